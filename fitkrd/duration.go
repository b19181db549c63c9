package fitkrd

import (
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/internal/cascade"
	"github.com/lucasjlepore/kaiord/krd"
)

type durationRule = cascade.Rule[StepFields, krd.Duration]

func present(get func(StepFields) *float64) func(StepFields) bool {
	return func(f StepFields) bool { return get(f) != nil }
}

func repeatFrom(f StepFields) int {
	if f.DurationStep == nil {
		return 0
	}
	return int(*f.DurationStep)
}

func repeatRule(name string, t krd.DurationType, get func(StepFields) *float64) durationRule {
	return durationRule{
		Name: name,
		Match: func(f StepFields) bool {
			return get(f) != nil && f.DurationStep != nil
		},
		Build: func(f StepFields) krd.Duration {
			return krd.RepeatUntilDuration(t, *get(f), repeatFrom(f))
		},
	}
}

var durationRules = []durationRule{
	{
		Name:  "time",
		Match: present(func(f StepFields) *float64 { return f.DurationTime }),
		Build: func(f StepFields) krd.Duration { return krd.TimeDuration(*f.DurationTime) },
	},
	{
		Name:  "distance",
		Match: present(func(f StepFields) *float64 { return f.DurationDistance }),
		Build: func(f StepFields) krd.Duration { return krd.DistanceDuration(*f.DurationDistance) },
	},
	{
		Name:  "heart rate less than",
		Match: present(func(f StepFields) *float64 { return f.DurationHRLessThan }),
		Build: func(f StepFields) krd.Duration { return krd.HeartRateLessThanDuration(*f.DurationHRLessThan) },
	},
	repeatRule("repeat until heart rate greater than", krd.DurationRepeatUntilHeartRateGreaterThan,
		func(f StepFields) *float64 { return f.RepeatHRGreaterThan }),
	{
		Name:  "calories",
		Match: present(func(f StepFields) *float64 { return f.DurationCalories }),
		Build: func(f StepFields) krd.Duration { return krd.CaloriesDuration(*f.DurationCalories) },
	},
	{
		Name:  "power less than",
		Match: present(func(f StepFields) *float64 { return f.DurationPowerLessThan }),
		Build: func(f StepFields) krd.Duration { return krd.PowerLessThanDuration(*f.DurationPowerLessThan) },
	},
	{
		Name:  "power greater than",
		Match: present(func(f StepFields) *float64 { return f.DurationPowerGreaterThan }),
		Build: func(f StepFields) krd.Duration { return krd.PowerGreaterThanDuration(*f.DurationPowerGreaterThan) },
	},
	repeatRule("repeat until time", krd.DurationRepeatUntilTime,
		func(f StepFields) *float64 { return f.RepeatTime }),
	repeatRule("repeat until distance", krd.DurationRepeatUntilDistance,
		func(f StepFields) *float64 { return f.RepeatDistance }),
	repeatRule("repeat until calories", krd.DurationRepeatUntilCalories,
		func(f StepFields) *float64 { return f.RepeatCalories }),
	repeatRule("repeat until heart rate less than", krd.DurationRepeatUntilHeartRateLessThan,
		func(f StepFields) *float64 { return f.RepeatHRLessThan }),
	repeatRule("repeat until power less than", krd.DurationRepeatUntilPowerLessThan,
		func(f StepFields) *float64 { return f.RepeatPowerLessThan }),
	repeatRule("repeat until power greater than", krd.DurationRepeatUntilPowerGreaterThan,
		func(f StepFields) *float64 { return f.RepeatPowerGreaterThan }),
}

// ConvertDuration resolves the step duration from its dedicated fields. It
// returns nil when none is present; callers fall back to an open duration.
// repeat_until_steps_cmplt is not a duration: the workout reader folds it
// into a repetition block.
func ConvertDuration(f StepFields) *krd.Duration {
	d, ok := cascade.Optional(durationRules, f)
	if !ok {
		return nil
	}
	return &d
}

// durationMsg is the FIT encoding of a duration.
type durationMsg struct {
	Type   fit.WktStepDuration
	Value  uint32
	Target *uint32 // threshold of repeat_until_* steps
}

func u32p(v uint32) *uint32 { return &v }

var durationTypes = map[krd.DurationType]fit.WktStepDuration{
	krd.DurationTime:                            fit.WktStepDurationTime,
	krd.DurationDistance:                        fit.WktStepDurationDistance,
	krd.DurationCalories:                        fit.WktStepDurationCalories,
	krd.DurationHeartRateLessThan:               fit.WktStepDurationHrLessThan,
	krd.DurationPowerLessThan:                   fit.WktStepDurationPowerLessThan,
	krd.DurationPowerGreaterThan:                fit.WktStepDurationPowerGreaterThan,
	krd.DurationOpen:                            fit.WktStepDurationOpen,
	krd.DurationRepeatUntilTime:                 fit.WktStepDurationRepeatUntilTime,
	krd.DurationRepeatUntilDistance:             fit.WktStepDurationRepeatUntilDistance,
	krd.DurationRepeatUntilCalories:             fit.WktStepDurationRepeatUntilCalories,
	krd.DurationRepeatUntilHeartRateLessThan:    fit.WktStepDurationRepeatUntilHrLessThan,
	krd.DurationRepeatUntilHeartRateGreaterThan: fit.WktStepDurationRepeatUntilHrGreaterThan,
	krd.DurationRepeatUntilPowerLessThan:        fit.WktStepDurationRepeatUntilPowerLessThan,
	krd.DurationRepeatUntilPowerGreaterThan:     fit.WktStepDurationRepeatUntilPowerGreaterThan,
}

// encodeValue converts a canonical value to its raw FIT form for t.
func encodeValue(t krd.DurationType, v float64) uint32 {
	switch t {
	case krd.DurationTime, krd.DurationRepeatUntilTime:
		return u32(v * 1000)
	case krd.DurationDistance, krd.DurationRepeatUntilDistance:
		return u32(v * 100)
	case krd.DurationHeartRateLessThan, krd.DurationRepeatUntilHeartRateLessThan,
		krd.DurationRepeatUntilHeartRateGreaterThan:
		return u32(v + heartRateOffset)
	case krd.DurationPowerLessThan, krd.DurationPowerGreaterThan,
		krd.DurationRepeatUntilPowerLessThan, krd.DurationRepeatUntilPowerGreaterThan:
		return u32(v + powerOffset)
	default:
		return u32(v)
	}
}

// encodeDuration is the inverse of ConvertDuration. stepIndex maps a KRD
// step index to the message index it was written at.
func encodeDuration(d krd.Duration, stepIndex func(int) int) (durationMsg, bool) {
	t, ok := durationTypes[d.Type]
	if !ok {
		return durationMsg{Type: fit.WktStepDurationOpen}, false
	}
	if d.Type == krd.DurationOpen {
		return durationMsg{Type: t}, true
	}
	v, ok := d.Value()
	if !ok {
		return durationMsg{Type: fit.WktStepDurationOpen}, false
	}
	if d.Type.IsRepeat() {
		from := 0
		if d.RepeatFrom != nil {
			from = stepIndex(*d.RepeatFrom)
		}
		return durationMsg{Type: t, Value: uint32(from), Target: u32p(encodeValue(d.Type, v))}, true
	}
	return durationMsg{Type: t, Value: encodeValue(d.Type, v)}, true
}
