// Package tcx converts Garmin Training Center (TCX) workouts and activities
// to and from KRD.
package tcx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/internal/restore"
	"github.com/lucasjlepore/kaiord/krd"
)

// keyPrefix is the field bag prefix of restoration attributes.
const keyPrefix = restore.TCXPrefix

// ErrNoContent is returned for documents with neither a workout nor an activity.
var ErrNoContent = errors.New("tcx document has no workout or activity")

// ErrUnsupportedType is returned when writing a KRD type TCX cannot hold.
var ErrUnsupportedType = errors.New("krd type cannot be written to TCX")

type Options struct {
	// Logger receives lossy-conversion warnings. Nil discards them.
	Logger logrus.FieldLogger
	// Now stamps metadata.created for workouts, which carry no creation time.
	Now func() time.Time
}

func (o Options) log() logrus.FieldLogger {
	return logging.OrDiscard(o.Logger).WithField("format", "tcx")
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o Options) codec() restore.Codec {
	return restore.Codec{Prefix: keyPrefix, Log: o.log()}
}

// Read decodes the first workout, or failing that the first activity, of a
// TCX document.
func Read(r io.Reader, opts Options) (*krd.KRD, error) {
	var doc TrainingCenterDatabase
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode TCX document: %w", err)
	}

	switch {
	case doc.Workouts != nil && len(doc.Workouts.Workout) > 0:
		if n := len(doc.Workouts.Workout); n > 1 {
			opts.log().WithField("workouts", n).Warn("TCX file holds several workouts, reading the first")
		}
		return readWorkout(doc.Workouts.Workout[0], opts), nil
	case doc.Activities != nil && len(doc.Activities.Activity) > 0:
		return readActivity(doc.Activities.Activity[0], opts)
	default:
		return nil, ErrNoContent
	}
}

// Write encodes a KRD workout or activity as a TCX document.
func Write(w io.Writer, k *krd.KRD, opts Options) error {
	doc := TrainingCenterDatabase{
		Xmlns:       tcxNamespace,
		XmlnsXsi:    xsiNamespace,
		XmlnsKaiord: bag.Namespace,
	}

	switch k.Type {
	case krd.TypeWorkout:
		wk := k.Workout()
		if wk == nil {
			return errors.New("write TCX: krd document has no structured workout")
		}
		out, err := writeWorkout(wk, opts)
		if err != nil {
			return fmt.Errorf("write TCX workout: %w", err)
		}
		doc.Workouts = &Workouts{Workout: []Workout{out}}
	case krd.TypeActivity:
		doc.Activities = &Activities{Activity: []Activity{writeActivity(k)}}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, k.Type)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode TCX document: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func sportFromTCX(s string) krd.Sport {
	switch strings.ToLower(s) {
	case "running":
		return krd.SportRunning
	case "biking":
		return krd.SportCycling
	default:
		return krd.SportGeneric
	}
}

func sportToTCX(s krd.Sport) string {
	switch s {
	case krd.SportRunning:
		return "Running"
	case krd.SportCycling:
		return "Biking"
	default:
		return "Other"
	}
}
