// Package fitkrd converts Garmin FIT workout and activity files to KRD and
// writes KRD workouts back to FIT.
package fitkrd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/krd"
)

// ErrUnsupportedFileType is returned for FIT files that are neither
// workouts nor activities.
var ErrUnsupportedFileType = errors.New("unsupported FIT file type")

type Options struct {
	// Logger receives lossy-conversion warnings. Nil discards them.
	Logger logrus.FieldLogger
	// Now stamps metadata.created when the file carries no creation time.
	Now func() time.Time
}

func (o Options) log() logrus.FieldLogger {
	return logging.OrDiscard(o.Logger).WithField("format", "fit")
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Read decodes a FIT workout or activity file.
func Read(r io.Reader, opts Options) (*krd.KRD, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	switch decoded.FileId.Type {
	case fit.FileTypeWorkout:
		return readWorkout(decoded, opts)
	case fit.FileTypeActivity:
		return readActivity(decoded, opts)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFileType, decoded.FileId.Type)
	}
}

func metadataFromFileID(id fit.FileIdMsg, opts Options) krd.Metadata {
	meta := krd.Metadata{Created: validTimeOrZero(id.TimeCreated)}
	if meta.Created.IsZero() {
		meta.Created = opts.now()
	}
	if uint16(id.Manufacturer) != math.MaxUint16 {
		meta.Manufacturer = strings.ToLower(fmt.Sprint(id.Manufacturer))
	}
	if p := validUint16(id.Product); p != 0 {
		meta.Product = strconv.Itoa(int(p))
	}
	if s := validUint32(id.SerialNumber); s != 0 {
		meta.SerialNumber = strconv.FormatUint(uint64(s), 10)
	}
	return meta
}

func sportFromFIT(s fit.Sport) krd.Sport {
	switch s {
	case fit.SportCycling:
		return krd.SportCycling
	case fit.SportRunning:
		return krd.SportRunning
	case fit.SportSwimming:
		return krd.SportSwimming
	default:
		return krd.SportGeneric
	}
}

func sportToFIT(s krd.Sport) fit.Sport {
	switch s {
	case krd.SportCycling:
		return fit.SportCycling
	case krd.SportRunning:
		return fit.SportRunning
	case krd.SportSwimming:
		return fit.SportSwimming
	default:
		return fit.SportGeneric
	}
}

func subSportName(s fit.SubSport) string {
	return strings.ToLower(fmt.Sprint(s))
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func validUint32(v uint32) uint32 {
	if v == math.MaxUint32 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

// positive returns a pointer to v when it is a usable measurement.
func positive(v float64) *float64 {
	if v = safePositive(v); v == 0 {
		return nil
	}
	return &v
}
