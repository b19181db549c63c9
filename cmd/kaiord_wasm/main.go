//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"syscall/js"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord"
	"github.com/lucasjlepore/kaiord/pipeline"
	"github.com/lucasjlepore/kaiord/zwo"
)

func main() {
	js.Global().Set("convertWorkout", js.FuncOf(convertWorkout))
	js.Global().Set("exportArtifacts", js.FuncOf(exportArtifacts))
	select {}
}

// convertWorkout(fileBytes, from, to, options) converts between any two
// registered formats.
func convertWorkout(_ js.Value, args []js.Value) any {
	if len(args) < 3 {
		return failure("expected arguments: fileBytes(Uint8Array), from(string), to(string), options(object)")
	}
	data, err := bytesArg(args[0])
	if err != nil {
		return failure(err.Error())
	}
	from, err := kaiord.ParseFormat(args[1].String())
	if err != nil {
		return failure(err.Error())
	}
	to, err := kaiord.ParseFormat(args[2].String())
	if err != nil {
		return failure(err.Error())
	}
	var optsArg js.Value
	if len(args) > 3 {
		optsArg = args[3]
	}
	policy, err := zwo.ParseRepetitionPolicy(getString(optsArg, "repetition_policy", ""))
	if err != nil {
		return failure(err.Error())
	}

	logger, warnings := warningLogger()
	out, err := kaiord.Convert(data, from, to, kaiord.Options{
		Logger:                    logger,
		RepetitionPolicy:          policy,
		ZwiftAuthor:               getString(optsArg, "author", ""),
		ThresholdPaceSecondsPerKm: getFloat(optsArg, "threshold_pace_s_per_km"),
	})
	if err != nil {
		return failure(err.Error())
	}
	return map[string]any{
		"ok":       true,
		"data":     toUint8Array(out),
		"warnings": stringsToAny(warnings.messages),
	}
}

// exportArtifacts(fileBytes, options) runs the export pipeline and returns
// the artefacts as one zip.
func exportArtifacts(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	data, err := bytesArg(args[0])
	if err != nil {
		return failure(err.Error())
	}
	optsArg := args[1]

	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.fit"),
		Data:           data,
		Format:         getString(optsArg, "format", "csv"),
		FTPWatts:       getFloat(optsArg, "ftp_w"),
	})
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":       true,
		"zip":      toUint8Array(zipBytes),
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(fileNames),
	}
}

type warningHook struct {
	messages []string
}

func (h *warningHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.WarnLevel}
}

func (h *warningHook) Fire(e *logrus.Entry) error {
	h.messages = append(h.messages, e.Message)
	return nil
}

func warningLogger() (*logrus.Logger, *warningHook) {
	h := &warningHook{}
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.AddHook(h)
	return l, h
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func bytesArg(v js.Value) ([]byte, error) {
	if v.IsUndefined() || v.IsNull() || v.Get("length").Int() == 0 {
		return nil, fmt.Errorf("file bytes are required")
	}
	out := make([]byte, v.Get("length").Int())
	if n := js.CopyBytesToGo(out, v); n == 0 {
		return nil, fmt.Errorf("failed to read file bytes from JS input")
	}
	return out, nil
}

func toUint8Array(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
