// Package pipeline exports any supported workout or activity file as a set of
// analysis artefacts: the KRD document, a flat table and a summary.
package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord"
	"github.com/lucasjlepore/kaiord/krd"
)

const (
	krdFileName     = "krd.json"
	summaryFileName = "summary.json"
)

// Run reads opts.InputPath and writes every artefact into opts.OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	res, err := RunBytes(BytesOptions{
		SourceFileName: opts.InputPath,
		Data:           data,
		Format:         opts.Format,
		FTPWatts:       opts.FTPWatts,
		Logger:         opts.Logger,
		Now:            opts.Now,
	})
	if err != nil {
		return nil, err
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	out := &Result{OutputDir: opts.OutDir, Warnings: res.Warnings}
	for name, body := range res.Files {
		path := filepath.Join(opts.OutDir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		switch name {
		case krdFileName:
			out.KRDPath = path
		case summaryFileName:
			out.SummaryPath = path
		default:
			out.TablePath = path
		}
	}
	return out, nil
}

// RunBytes converts opts.Data and returns every artefact in memory. The
// source format comes from the extension of opts.SourceFileName.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	tableFormat, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	from, err := kaiord.DetectFormat(opts.SourceFileName)
	if err != nil {
		return nil, err
	}

	logger, warnings := collectWarnings(opts.Logger)
	k, err := kaiord.Read(opts.Data, from, kaiord.Options{Logger: logger, Now: opts.Now})
	if err != nil {
		return nil, err
	}

	var (
		summary   Summary
		tableName string
		table     []byte
	)
	switch k.Type {
	case krd.TypeWorkout:
		summary = buildWorkoutSummary(k.Workout())
		tableName = "steps." + tableFormat
		table, err = marshalSteps(stepRows(k.Workout()), tableFormat)
	default:
		summary = buildActivitySummary(k, opts.FTPWatts)
		tableName = "records." + tableFormat
		table, err = marshalRecords(recordRows(k.Records), tableFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", tableName, err)
	}

	now := time.Now().UTC()
	if opts.Now != nil {
		now = opts.Now()
	}
	summary.SourceFile = filepath.Base(opts.SourceFileName)
	summary.SourceFormat = string(from)
	summary.Type = k.Type
	summary.Sport = k.Metadata.Sport
	summary.GeneratedAt = now
	summary.LossyWarningCount = len(warnings.messages())

	krdJSON, err := kaiord.Write(k, kaiord.FormatKRD, kaiord.Options{})
	if err != nil {
		return nil, err
	}
	summaryJSON, err := marshalJSON(summary)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", summaryFileName, err)
	}

	return &BytesResult{
		Files: map[string][]byte{
			krdFileName:     krdJSON,
			tableName:       table,
			summaryFileName: summaryJSON,
		},
		Summary:  summary,
		Warnings: append(warnings.messages(), summary.Warnings...),
	}, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

// warningCollector records every warning the converters log and forwards
// all entries to the caller's logger.
type warningCollector struct {
	mu   sync.Mutex
	msgs []string
	next logrus.FieldLogger
}

func collectWarnings(next logrus.FieldLogger) (*logrus.Logger, *warningCollector) {
	c := &warningCollector{next: next}
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	l.AddHook(c)
	return l, c
}

func (c *warningCollector) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (c *warningCollector) Fire(e *logrus.Entry) error {
	if e.Level == logrus.WarnLevel {
		c.mu.Lock()
		c.msgs = append(c.msgs, e.Message)
		c.mu.Unlock()
	}
	if c.next == nil {
		return nil
	}
	entry := c.next.WithFields(e.Data)
	switch e.Level {
	case logrus.DebugLevel, logrus.TraceLevel:
		entry.Debug(e.Message)
	case logrus.InfoLevel:
		entry.Info(e.Message)
	case logrus.WarnLevel:
		entry.Warn(e.Message)
	default:
		entry.Error(e.Message)
	}
	return nil
}

func (c *warningCollector) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func recordRows(records []krd.Record) []RecordRow {
	sorted := append([]krd.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	rows := make([]RecordRow, 0, len(sorted))
	for i, r := range sorted {
		row := RecordRow{
			TSUTCISO:    r.Timestamp.UTC().Format(time.RFC3339),
			ElapsedS:    r.Timestamp.Sub(sorted[0].Timestamp).Seconds(),
			PowerW:      r.Power,
			HRBPM:       r.HeartRate,
			CadenceRPM:  r.Cadence,
			SpeedMPS:    r.Speed,
			DistanceM:   r.Distance,
			AltitudeM:   r.Altitude,
			RecordIndex: i,
		}
		if r.Position != nil {
			row.LatDeg = floatPtr(r.Position.Lat)
			row.LonDeg = floatPtr(r.Position.Lon)
		}
		rows = append(rows, row)
	}
	return rows
}

func stepRows(w *krd.Workout) []StepRow {
	var rows []StepRow
	add := func(s krd.WorkoutStep, block, repeat int) {
		row := StepRow{
			Position:     len(rows),
			BlockIndex:   block,
			RepeatCount:  repeat,
			StepIndex:    s.StepIndex,
			Name:         s.Name,
			Intensity:    string(s.Intensity),
			DurationType: string(s.Duration.Type),
			TargetType:   string(s.Target.Type),
		}
		if v, ok := s.Duration.Value(); ok {
			row.DurationValue = floatPtr(v)
		}
		if v := s.Target.Value; v != nil {
			row.TargetUnit = string(v.Unit)
			row.TargetValue = v.Value
			row.TargetMin = v.Min
			row.TargetMax = v.Max
		}
		rows = append(rows, row)
	}
	for i, item := range w.Steps {
		switch {
		case item.Step != nil:
			add(*item.Step, -1, 1)
		case item.Block != nil:
			for _, s := range item.Block.Steps {
				add(s, i, item.Block.RepeatCount)
			}
		}
	}
	return rows
}

var recordHeader = []string{
	"ts_utc_iso", "elapsed_s", "power_w", "hr_bpm", "cadence_rpm", "speed_mps", "distance_m", "altitude_m",
	"lat_deg", "lon_deg", "record_index",
}

var stepHeader = []string{
	"position", "block_index", "repeat_count", "step_index", "name", "intensity",
	"duration_type", "duration_value", "target_type", "target_unit", "target_value", "target_min", "target_max",
}

func marshalRecords(rows []RecordRow, format string) ([]byte, error) {
	if format == "parquet" {
		return marshalRecordsParquet(rows)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.TSUTCISO,
			formatFloat(r.ElapsedS),
			formatFloatPtr(r.PowerW),
			formatFloatPtr(r.HRBPM),
			formatFloatPtr(r.CadenceRPM),
			formatFloatPtr(r.SpeedMPS),
			formatFloatPtr(r.DistanceM),
			formatFloatPtr(r.AltitudeM),
			formatFloatPtr(r.LatDeg),
			formatFloatPtr(r.LonDeg),
			strconv.Itoa(r.RecordIndex),
		})
	}
	return marshalCSV(recordHeader, out)
}

func marshalSteps(rows []StepRow, format string) ([]byte, error) {
	if format == "parquet" {
		return marshalStepsParquet(rows)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			strconv.Itoa(r.Position),
			strconv.Itoa(r.BlockIndex),
			strconv.Itoa(r.RepeatCount),
			strconv.Itoa(r.StepIndex),
			r.Name,
			r.Intensity,
			r.DurationType,
			formatFloatPtr(r.DurationValue),
			r.TargetType,
			r.TargetUnit,
			formatFloatPtr(r.TargetValue),
			formatFloatPtr(r.TargetMin),
			formatFloatPtr(r.TargetMax),
		})
	}
	return marshalCSV(stepHeader, out)
}

func marshalCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
