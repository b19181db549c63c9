package tcx

import (
	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/krd"
)

// Field bag keys shared by the reader, the writer and the resolvers.
const (
	fieldDurationType = "durationType"
	fieldSeconds      = "seconds"
	fieldMeters       = "meters"
	fieldBPM          = "bpm"
	fieldCalories     = "calories"

	fieldTargetType = "targetType"
	fieldZone       = "zone"
	fieldLow        = "low"
	fieldHigh       = "high"
)

// Duration tags as they appear in the field bag.
const (
	DurationTime           = "Time"
	DurationDistance       = "Distance"
	DurationLapButton      = "LapButton"
	DurationHeartRateAbove = "HeartRateAbove"
	DurationHeartRateBelow = "HeartRateBelow"
	DurationCaloriesBurned = "CaloriesBurned"
)

// DurationResult is a canonical duration plus the TCX conditions it could
// not hold.
type DurationResult struct {
	Duration   krd.Duration
	Extensions *krd.TCXStepExtensions
}

type durationHandler func(b bag.Bag) (DurationResult, bool)

var durationHandlers = map[string]durationHandler{
	DurationTime: func(b bag.Bag) (DurationResult, bool) {
		v, ok := b.Number(fieldSeconds)
		return DurationResult{Duration: krd.TimeDuration(v)}, ok
	},
	DurationDistance: func(b bag.Bag) (DurationResult, bool) {
		v, ok := b.Number(fieldMeters)
		return DurationResult{Duration: krd.DistanceDuration(v)}, ok
	},
	DurationLapButton: func(bag.Bag) (DurationResult, bool) {
		return DurationResult{Duration: krd.OpenDuration()}, true
	},
	DurationHeartRateAbove: func(b bag.Bag) (DurationResult, bool) {
		v, ok := b.Number(fieldBPM)
		return openWith(&krd.TCXStepExtensions{HeartRateAbove: &v}), ok
	},
	DurationHeartRateBelow: func(b bag.Bag) (DurationResult, bool) {
		v, ok := b.Number(fieldBPM)
		return openWith(&krd.TCXStepExtensions{HeartRateBelow: &v}), ok
	},
	DurationCaloriesBurned: func(b bag.Bag) (DurationResult, bool) {
		v, ok := b.Number(fieldCalories)
		return openWith(&krd.TCXStepExtensions{CaloriesBurned: &v}), ok
	},
}

func openWith(ext *krd.TCXStepExtensions) DurationResult {
	return DurationResult{Duration: krd.OpenDuration(), Extensions: ext}
}

// ConvertDuration maps a TCX duration field bag to KRD. Heart rate and
// calorie conditions have no canonical form: they become open durations
// and keep their threshold in the extensions. Unknown tags, or a known tag
// missing its value, give a plain open duration.
func ConvertDuration(b bag.Bag) DurationResult {
	tag, _ := b.String(fieldDurationType)
	if h, ok := durationHandlers[tag]; ok {
		if res, ok := h(b); ok {
			return res
		}
	}
	return DurationResult{Duration: krd.OpenDuration()}
}

// durationFields flattens a Duration element into a field bag.
func durationFields(d *Duration) bag.Bag {
	b := bag.Bag{}
	if d == nil {
		return b
	}
	switch xsiType(d.Attrs) {
	case "Time_t":
		b[fieldDurationType] = DurationTime
		b.SetNumber(fieldSeconds, d.Seconds)
	case "Distance_t":
		b[fieldDurationType] = DurationDistance
		b.SetNumber(fieldMeters, d.Meters)
	case "HeartRateAbove_t":
		b[fieldDurationType] = DurationHeartRateAbove
		setMeasure(b, fieldBPM, d.HeartRate)
	case "HeartRateBelow_t":
		b[fieldDurationType] = DurationHeartRateBelow
		setMeasure(b, fieldBPM, d.HeartRate)
	case "CaloriesBurned_t":
		b[fieldDurationType] = DurationCaloriesBurned
		b.SetNumber(fieldCalories, d.Calories)
	case "UserInitiated_t":
		b[fieldDurationType] = DurationLapButton
	}
	return b
}

func setMeasure(b bag.Bag, key string, m *Measure) {
	if m != nil {
		b[key] = m.Value
	}
}
