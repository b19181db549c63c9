// Package kaiord converts workout and activity files between FIT, TCX, ZWO
// and the canonical KRD representation.
package kaiord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/fitkrd"
	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/tcx"
	"github.com/lucasjlepore/kaiord/zwo"
)

// Options configures every adapter a conversion goes through.
type Options struct {
	// Logger receives lossy-conversion warnings. Nil discards them.
	Logger logrus.FieldLogger
	// Now stamps metadata.created when the source has no creation time.
	Now func() time.Time

	RepetitionPolicy          zwo.RepetitionPolicy
	ZwiftAuthor               string
	ThresholdPaceSecondsPerKm float64
}

func (o Options) fit() fitkrd.Options {
	return fitkrd.Options{Logger: o.Logger, Now: o.Now}
}

func (o Options) tcx() tcx.Options {
	return tcx.Options{Logger: o.Logger, Now: o.Now}
}

func (o Options) zwo() zwo.Options {
	return zwo.Options{
		Logger:                    o.Logger,
		Now:                       o.Now,
		RepetitionPolicy:          o.RepetitionPolicy,
		Author:                    o.ZwiftAuthor,
		ThresholdPaceSecondsPerKm: o.ThresholdPaceSecondsPerKm,
	}
}

type codec struct {
	read  func(io.Reader, Options) (*krd.KRD, error)
	write func(io.Writer, *krd.KRD, Options) error
	// workoutsOnly formats cannot carry activities or courses.
	workoutsOnly bool
}

var registry = map[Format]codec{
	FormatFIT: {
		read:         func(r io.Reader, o Options) (*krd.KRD, error) { return fitkrd.Read(r, o.fit()) },
		write:        func(w io.Writer, k *krd.KRD, o Options) error { return fitkrd.Write(w, k, o.fit()) },
		workoutsOnly: true,
	},
	FormatTCX: {
		read:  func(r io.Reader, o Options) (*krd.KRD, error) { return tcx.Read(r, o.tcx()) },
		write: func(w io.Writer, k *krd.KRD, o Options) error { return tcx.Write(w, k, o.tcx()) },
	},
	FormatZWO: {
		read:         func(r io.Reader, o Options) (*krd.KRD, error) { return zwo.Read(r, o.zwo()) },
		write:        func(w io.Writer, k *krd.KRD, o Options) error { return zwo.Write(w, k, o.zwo()) },
		workoutsOnly: true,
	},
	FormatKRD: {
		read:  readKRD,
		write: writeKRD,
	},
}

func lookup(f Format) (codec, error) {
	c, ok := registry[f]
	if !ok {
		return codec{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return c, nil
}

// Read decodes data in format f and validates the resulting document.
func Read(data []byte, f Format, opts Options) (*krd.KRD, error) {
	c, err := lookup(f)
	if err != nil {
		return nil, err
	}
	k, err := c.read(bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	if err := krd.Validate(k); err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	return k, nil
}

// Write encodes k in format f.
func Write(k *krd.KRD, f Format, opts Options) ([]byte, error) {
	c, err := lookup(f)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("write %s: document is nil", f)
	}
	if c.workoutsOnly && k.Type != krd.TypeWorkout {
		return nil, fmt.Errorf("%w: %s cannot carry a %s document", ErrUnsupportedFormat, f, k.Type)
	}
	var buf bytes.Buffer
	if err := c.write(&buf, k, opts); err != nil {
		return nil, fmt.Errorf("write %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// Convert reads data as from and writes it as to.
func Convert(data []byte, from, to Format, opts Options) ([]byte, error) {
	k, err := Read(data, from, opts)
	if err != nil {
		return nil, err
	}
	return Write(k, to, opts)
}

// ReadFile reads and validates the file at path, detecting its format from
// the extension.
func ReadFile(path string, opts Options) (*krd.KRD, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(data, f, opts)
}

// ConvertFile converts in to out, taking both formats from the extensions.
func ConvertFile(in, out string, opts Options) error {
	to, err := DetectFormat(out)
	if err != nil {
		return err
	}
	k, err := ReadFile(in, opts)
	if err != nil {
		return err
	}
	data, err := Write(k, to, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logging.OrDiscard(opts.Logger).WithFields(logrus.Fields{
		"input":  in,
		"output": out,
		"type":   k.Type,
	}).Debug("converted")
	return nil
}

func readKRD(r io.Reader, _ Options) (*krd.KRD, error) {
	var k krd.KRD
	if err := json.NewDecoder(r).Decode(&k); err != nil {
		return nil, fmt.Errorf("decode KRD json: %w", err)
	}
	return &k, nil
}

func writeKRD(w io.Writer, k *krd.KRD, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(k)
}
