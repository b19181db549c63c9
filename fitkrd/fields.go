package fitkrd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tormoder/fit"
)

// FIT encodes absolute heart rate and power in the same field as their
// relative forms: values above these offsets are bpm+100 and watts+1000.
const (
	heartRateOffset = 100
	powerOffset     = 1000

	maxHeartRateZone = 5
	maxPowerZone     = 7
	maxSpeedZone     = 10
)

// StepFields is the flat bag of optional values extracted from one
// workout_step message. Duration fields are decoded to canonical units.
// Target fields keep their raw FIT encoding, except the speed-specific
// custom fields which are already in m/s.
type StepFields struct {
	Name      string
	Notes     string
	Intensity fit.Intensity
	Equipment fit.WorkoutEquipment

	DurationType  fit.WktStepDuration
	DurationValue *float64
	TargetType    fit.WktStepTarget
	RawTarget     *float64

	DurationTime             *float64
	DurationDistance         *float64
	DurationCalories         *float64
	DurationHRLessThan       *float64
	DurationPowerLessThan    *float64
	DurationPowerGreaterThan *float64

	DurationStep           *float64
	RepeatSteps            *float64
	RepeatTime             *float64
	RepeatDistance         *float64
	RepeatCalories         *float64
	RepeatHRLessThan       *float64
	RepeatHRGreaterThan    *float64
	RepeatPowerLessThan    *float64
	RepeatPowerGreaterThan *float64

	TargetValue       *float64
	TargetSpeedZone   *float64
	TargetHRZone      *float64
	TargetCadenceZone *float64
	TargetPowerZone   *float64

	CustomTargetValueLow      *float64
	CustomTargetValueHigh     *float64
	CustomTargetSpeedLow      *float64
	CustomTargetSpeedHigh     *float64
	CustomTargetHeartRateLow  *float64
	CustomTargetHeartRateHigh *float64
	CustomTargetCadenceLow    *float64
	CustomTargetCadenceHigh   *float64
	CustomTargetPowerLow      *float64
	CustomTargetPowerHigh     *float64
}

func num(v float64) *float64 {
	return &v
}

func validRaw(v uint32) (float64, bool) {
	if v == math.MaxUint32 {
		return 0, false
	}
	return float64(v), true
}

// absolute strips the FIT offset from an absolute-encoded value.
func absolute(raw, offset float64) (float64, bool) {
	if raw > offset {
		return raw - offset, true
	}
	return 0, false
}

// FieldsFromMsg extracts the step field bag from a decoded message.
func FieldsFromMsg(m *fit.WorkoutStepMsg) StepFields {
	f := StepFields{
		Name:         m.WktStepName,
		Notes:        m.Notes,
		Intensity:    m.Intensity,
		Equipment:    m.Equipment,
		DurationType: m.DurationType,
		TargetType:   m.TargetType,
	}

	dv, hasDV := validRaw(m.DurationValue)
	tv, hasTV := validRaw(m.TargetValue)
	if hasDV {
		f.DurationValue = num(dv)
	}
	if hasTV {
		f.RawTarget = num(tv)
	}

	repeat := false
	switch m.DurationType {
	case fit.WktStepDurationTime:
		if hasDV {
			f.DurationTime = num(dv / 1000)
		}
	case fit.WktStepDurationDistance:
		if hasDV {
			f.DurationDistance = num(dv / 100)
		}
	case fit.WktStepDurationCalories:
		if hasDV {
			f.DurationCalories = num(dv)
		}
	case fit.WktStepDurationHrLessThan:
		if bpm, ok := absolute(dv, heartRateOffset); hasDV && ok {
			f.DurationHRLessThan = num(bpm)
		}
	case fit.WktStepDurationPowerLessThan:
		if w, ok := absolute(dv, powerOffset); hasDV && ok {
			f.DurationPowerLessThan = num(w)
		}
	case fit.WktStepDurationPowerGreaterThan:
		if w, ok := absolute(dv, powerOffset); hasDV && ok {
			f.DurationPowerGreaterThan = num(w)
		}
	case fit.WktStepDurationRepeatUntilStepsCmplt,
		fit.WktStepDurationRepeatUntilTime,
		fit.WktStepDurationRepeatUntilDistance,
		fit.WktStepDurationRepeatUntilCalories,
		fit.WktStepDurationRepeatUntilHrLessThan,
		fit.WktStepDurationRepeatUntilHrGreaterThan,
		fit.WktStepDurationRepeatUntilPowerLessThan,
		fit.WktStepDurationRepeatUntilPowerGreaterThan:
		repeat = true
		if hasDV {
			f.DurationStep = num(dv)
		}
		if hasTV {
			f.setRepeatThreshold(m.DurationType, tv)
		}
	}

	// Repeat steps reuse target_value for their threshold.
	if repeat {
		return f
	}

	low, hasLow := validRaw(m.CustomTargetValueLow)
	high, hasHigh := validRaw(m.CustomTargetValueHigh)
	custom := hasTV && tv == 0
	if custom {
		if hasLow {
			f.CustomTargetValueLow = num(low)
		}
		if hasHigh {
			f.CustomTargetValueHigh = num(high)
		}
	}

	switch m.TargetType {
	case fit.WktStepTargetSpeed:
		if custom {
			if hasLow {
				f.CustomTargetSpeedLow = num(low / 1000)
			}
			if hasHigh {
				f.CustomTargetSpeedHigh = num(high / 1000)
			}
		} else if hasTV {
			f.setZoneOrValue(&f.TargetSpeedZone, tv, maxSpeedZone)
		}
	case fit.WktStepTargetHeartRate:
		if custom {
			f.CustomTargetHeartRateLow = f.CustomTargetValueLow
			f.CustomTargetHeartRateHigh = f.CustomTargetValueHigh
		} else if hasTV {
			f.setZoneOrValue(&f.TargetHRZone, tv, maxHeartRateZone)
		}
	case fit.WktStepTargetCadence:
		if custom {
			f.CustomTargetCadenceLow = f.CustomTargetValueLow
			f.CustomTargetCadenceHigh = f.CustomTargetValueHigh
		} else if hasTV && tv > 0 {
			f.TargetCadenceZone = num(tv)
			f.TargetValue = num(tv)
		}
	case fit.WktStepTargetPower:
		if custom {
			f.CustomTargetPowerLow = f.CustomTargetValueLow
			f.CustomTargetPowerHigh = f.CustomTargetValueHigh
		} else if hasTV {
			f.setZoneOrValue(&f.TargetPowerZone, tv, maxPowerZone)
		}
	}
	return f
}

func (f *StepFields) setZoneOrValue(zone **float64, tv float64, maxZone float64) {
	switch {
	case tv <= 0:
	case tv <= maxZone:
		*zone = num(tv)
	default:
		f.TargetValue = num(tv)
	}
}

func (f *StepFields) setRepeatThreshold(t fit.WktStepDuration, tv float64) {
	switch t {
	case fit.WktStepDurationRepeatUntilStepsCmplt:
		f.RepeatSteps = num(tv)
	case fit.WktStepDurationRepeatUntilTime:
		f.RepeatTime = num(tv / 1000)
	case fit.WktStepDurationRepeatUntilDistance:
		f.RepeatDistance = num(tv / 100)
	case fit.WktStepDurationRepeatUntilCalories:
		f.RepeatCalories = num(tv)
	case fit.WktStepDurationRepeatUntilHrLessThan:
		if bpm, ok := absolute(tv, heartRateOffset); ok {
			f.RepeatHRLessThan = num(bpm)
		}
	case fit.WktStepDurationRepeatUntilHrGreaterThan:
		if bpm, ok := absolute(tv, heartRateOffset); ok {
			f.RepeatHRGreaterThan = num(bpm)
		}
	case fit.WktStepDurationRepeatUntilPowerLessThan:
		if w, ok := absolute(tv, powerOffset); ok {
			f.RepeatPowerLessThan = num(w)
		}
	case fit.WktStepDurationRepeatUntilPowerGreaterThan:
		if w, ok := absolute(tv, powerOffset); ok {
			f.RepeatPowerGreaterThan = num(w)
		}
	}
}

var durationNames = map[fit.WktStepDuration]string{
	fit.WktStepDurationTime:                        "time",
	fit.WktStepDurationDistance:                    "distance",
	fit.WktStepDurationHrLessThan:                  "hr_less_than",
	fit.WktStepDurationHrGreaterThan:               "hr_greater_than",
	fit.WktStepDurationCalories:                    "calories",
	fit.WktStepDurationOpen:                        "open",
	fit.WktStepDurationRepeatUntilStepsCmplt:       "repeat_until_steps_cmplt",
	fit.WktStepDurationRepeatUntilTime:             "repeat_until_time",
	fit.WktStepDurationRepeatUntilDistance:         "repeat_until_distance",
	fit.WktStepDurationRepeatUntilCalories:         "repeat_until_calories",
	fit.WktStepDurationRepeatUntilHrLessThan:       "repeat_until_hr_less_than",
	fit.WktStepDurationRepeatUntilHrGreaterThan:    "repeat_until_hr_greater_than",
	fit.WktStepDurationRepeatUntilPowerLessThan:    "repeat_until_power_less_than",
	fit.WktStepDurationRepeatUntilPowerGreaterThan: "repeat_until_power_greater_than",
	fit.WktStepDurationPowerLessThan:               "power_less_than",
	fit.WktStepDurationPowerGreaterThan:            "power_greater_than",
}

var targetNames = map[fit.WktStepTarget]string{
	fit.WktStepTargetSpeed:      "speed",
	fit.WktStepTargetHeartRate:  "heart_rate",
	fit.WktStepTargetOpen:       "open",
	fit.WktStepTargetCadence:    "cadence",
	fit.WktStepTargetPower:      "power",
	fit.WktStepTargetGrade:      "grade",
	fit.WktStepTargetResistance: "resistance",
}

func durationName(t fit.WktStepDuration) string {
	if n, ok := durationNames[t]; ok {
		return n
	}
	return "type_" + strconv.Itoa(int(t))
}

func parseDurationName(name string) (fit.WktStepDuration, bool) {
	for t, n := range durationNames {
		if n == name {
			return t, true
		}
	}
	if rest, ok := strings.CutPrefix(name, "type_"); ok {
		if v, err := strconv.Atoi(rest); err == nil && v >= 0 && v < 0xFF {
			return fit.WktStepDuration(v), true
		}
	}
	return 0, false
}

func targetName(t fit.WktStepTarget) string {
	if n, ok := targetNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type_%d", t)
}

func parseTargetName(name string) (fit.WktStepTarget, bool) {
	for t, n := range targetNames {
		if n == name {
			return t, true
		}
	}
	if rest, ok := strings.CutPrefix(name, "type_"); ok {
		if v, err := strconv.Atoi(rest); err == nil && v >= 0 && v < 0xFF {
			return fit.WktStepTarget(v), true
		}
	}
	return 0, false
}
