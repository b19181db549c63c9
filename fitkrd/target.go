package fitkrd

import (
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/internal/cascade"
	"github.com/lucasjlepore/kaiord/krd"
)

type targetRule = cascade.Rule[StepFields, krd.Target]

func both(a, b *float64) bool {
	return a != nil && b != nil
}

func rangeOf(kind krd.TargetType, low, high *float64, decode func(float64) float64) krd.Target {
	return krd.NewTarget(kind, krd.Range(decode(*low), decode(*high)))
}

func identity(v float64) float64 { return v }

func mmPerSecond(v float64) float64 { return v / 1000 }

// decodePowerBound strips the watts offset when present. A range whose
// bounds are above the offset is in watts; otherwise it is percent FTP.
func decodePowerBound(v float64) float64 {
	if w, ok := absolute(v, powerOffset); ok {
		return w
	}
	return v
}

func decodeHeartRateBound(v float64) float64 {
	if bpm, ok := absolute(v, heartRateOffset); ok {
		return bpm
	}
	return v
}

var cadenceRules = []targetRule{
	{
		Name:  "cadence range",
		Match: func(f StepFields) bool { return both(f.CustomTargetCadenceLow, f.CustomTargetCadenceHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetCadence, f.CustomTargetCadenceLow, f.CustomTargetCadenceHigh, identity)
		},
	},
	{
		Name:  "custom range",
		Match: func(f StepFields) bool { return both(f.CustomTargetValueLow, f.CustomTargetValueHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetCadence, f.CustomTargetValueLow, f.CustomTargetValueHigh, identity)
		},
	},
	{
		// The zone number is used as the rpm value.
		Name:  "zone",
		Match: func(f StepFields) bool { return f.TargetCadenceZone != nil },
		Build: func(f StepFields) krd.Target {
			return krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, *f.TargetCadenceZone))
		},
	},
	{
		Name:  "value",
		Match: func(f StepFields) bool { return f.TargetValue != nil },
		Build: func(f StepFields) krd.Target {
			return krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, *f.TargetValue))
		},
	},
}

var paceRules = []targetRule{
	{
		Name:  "speed range",
		Match: func(f StepFields) bool { return both(f.CustomTargetSpeedLow, f.CustomTargetSpeedHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetPace, f.CustomTargetSpeedLow, f.CustomTargetSpeedHigh, identity)
		},
	},
	{
		Name:  "custom range",
		Match: func(f StepFields) bool { return both(f.CustomTargetValueLow, f.CustomTargetValueHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetPace, f.CustomTargetValueLow, f.CustomTargetValueHigh, mmPerSecond)
		},
	},
	{
		Name:  "zone",
		Match: func(f StepFields) bool { return f.TargetSpeedZone != nil },
		Build: func(f StepFields) krd.Target {
			return krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitZone, *f.TargetSpeedZone))
		},
	},
	{
		Name:  "value",
		Match: func(f StepFields) bool { return f.TargetValue != nil },
		Build: func(f StepFields) krd.Target {
			return krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitMPS, mmPerSecond(*f.TargetValue)))
		},
	},
}

var powerRules = []targetRule{
	{
		Name:  "power range",
		Match: func(f StepFields) bool { return both(f.CustomTargetPowerLow, f.CustomTargetPowerHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetPower, f.CustomTargetPowerLow, f.CustomTargetPowerHigh, decodePowerBound)
		},
	},
	{
		Name:  "custom range",
		Match: func(f StepFields) bool { return both(f.CustomTargetValueLow, f.CustomTargetValueHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetPower, f.CustomTargetValueLow, f.CustomTargetValueHigh, decodePowerBound)
		},
	},
	{
		Name:  "zone",
		Match: func(f StepFields) bool { return f.TargetPowerZone != nil },
		Build: func(f StepFields) krd.Target {
			return krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitZone, *f.TargetPowerZone))
		},
	},
	{
		Name:  "value",
		Match: func(f StepFields) bool { return f.TargetValue != nil },
		Build: func(f StepFields) krd.Target {
			if w, ok := absolute(*f.TargetValue, powerOffset); ok {
				return krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitWatts, w))
			}
			return krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, *f.TargetValue))
		},
	},
}

var heartRateRules = []targetRule{
	{
		Name:  "heart rate range",
		Match: func(f StepFields) bool { return both(f.CustomTargetHeartRateLow, f.CustomTargetHeartRateHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetHeartRate, f.CustomTargetHeartRateLow, f.CustomTargetHeartRateHigh, decodeHeartRateBound)
		},
	},
	{
		Name:  "custom range",
		Match: func(f StepFields) bool { return both(f.CustomTargetValueLow, f.CustomTargetValueHigh) },
		Build: func(f StepFields) krd.Target {
			return rangeOf(krd.TargetHeartRate, f.CustomTargetValueLow, f.CustomTargetValueHigh, decodeHeartRateBound)
		},
	},
	{
		Name:  "zone",
		Match: func(f StepFields) bool { return f.TargetHRZone != nil },
		Build: func(f StepFields) krd.Target {
			return krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitZone, *f.TargetHRZone))
		},
	},
	{
		Name:  "value",
		Match: func(f StepFields) bool { return f.TargetValue != nil },
		Build: func(f StepFields) krd.Target {
			if bpm, ok := absolute(*f.TargetValue, heartRateOffset); ok {
				return krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitBPM, bpm))
			}
			return krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitPercentMax, *f.TargetValue))
		},
	},
}

// ConvertCadenceTarget resolves a cadence target. Specific cadence fields
// outrank the generic custom fields; a lone low or high bound falls through.
func ConvertCadenceTarget(f StepFields) krd.Target {
	return cascade.First(cadenceRules, f, krd.OpenTarget())
}

// ConvertPaceTarget resolves a pace target from the speed fields.
func ConvertPaceTarget(f StepFields) krd.Target {
	return cascade.First(paceRules, f, krd.OpenTarget())
}

// ConvertPowerTarget resolves a power target. Values above 1000 are watts
// offset by 1000; lower values are percent of FTP.
func ConvertPowerTarget(f StepFields) krd.Target {
	return cascade.First(powerRules, f, krd.OpenTarget())
}

// ConvertHeartRateTarget resolves a heart rate target. Values above 100 are
// bpm offset by 100; lower values are percent of max heart rate.
func ConvertHeartRateTarget(f StepFields) krd.Target {
	return cascade.First(heartRateRules, f, krd.OpenTarget())
}

// ConvertTarget dispatches on the step's FIT target type.
func ConvertTarget(f StepFields) krd.Target {
	switch f.TargetType {
	case fit.WktStepTargetCadence:
		return ConvertCadenceTarget(f)
	case fit.WktStepTargetSpeed:
		return ConvertPaceTarget(f)
	case fit.WktStepTargetPower:
		return ConvertPowerTarget(f)
	case fit.WktStepTargetHeartRate:
		return ConvertHeartRateTarget(f)
	default:
		return krd.OpenTarget()
	}
}

// rangeUnit reports the unit of a decoded range when it differs from the
// kind's default: watts for power, percent of max for heart rate.
func rangeUnit(f StepFields, t krd.Target) krd.Unit {
	if t.Value == nil || t.Value.Unit != krd.UnitRange {
		return ""
	}
	low := f.CustomTargetValueLow
	switch t.Type {
	case krd.TargetPower:
		if f.CustomTargetPowerLow != nil {
			low = f.CustomTargetPowerLow
		}
		if low != nil && *low > powerOffset {
			return krd.UnitWatts
		}
	case krd.TargetHeartRate:
		if f.CustomTargetHeartRateLow != nil {
			low = f.CustomTargetHeartRateLow
		}
		if low != nil && *low <= heartRateOffset {
			return krd.UnitPercentMax
		}
	}
	return ""
}

// targetMsg is the FIT encoding of a target.
type targetMsg struct {
	Type  fit.WktStepTarget
	Value uint32
	Low   uint32
	High  uint32
}

func openTargetMsg() targetMsg {
	return targetMsg{Type: fit.WktStepTargetOpen, Value: 0, Low: invalidUint32, High: invalidUint32}
}

const invalidUint32 = ^uint32(0)

func u32(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	return uint32(v + 0.5)
}

// encodeTarget is the inverse of ConvertTarget. rangeAs selects the unit of
// a range value; empty means the kind's default.
func encodeTarget(t krd.Target, rangeAs krd.Unit) (targetMsg, bool) {
	if t.Type == krd.TargetOpen || t.Value == nil {
		return openTargetMsg(), t.Type == krd.TargetOpen
	}
	v := t.Value
	out := targetMsg{Low: invalidUint32, High: invalidUint32}

	custom := func(low, high float64) targetMsg {
		out.Value = 0
		out.Low, out.High = u32(low), u32(high)
		return out
	}

	switch t.Type {
	case krd.TargetPower:
		out.Type = fit.WktStepTargetPower
		switch {
		case v.IsRange() && rangeAs == krd.UnitWatts:
			return custom(*v.Min+powerOffset, *v.Max+powerOffset), true
		case v.IsRange():
			return custom(*v.Min, *v.Max), true
		case v.Value == nil:
			return openTargetMsg(), false
		case v.Unit == krd.UnitZone:
			out.Value = u32(*v.Value)
		case v.Unit == krd.UnitWatts:
			out.Value = u32(*v.Value + powerOffset)
		case v.Unit == krd.UnitPercentFTP:
			out.Value = u32(*v.Value)
		default:
			return openTargetMsg(), false
		}
	case krd.TargetHeartRate:
		out.Type = fit.WktStepTargetHeartRate
		switch {
		case v.IsRange() && rangeAs == krd.UnitPercentMax:
			return custom(*v.Min, *v.Max), true
		case v.IsRange():
			return custom(*v.Min+heartRateOffset, *v.Max+heartRateOffset), true
		case v.Value == nil:
			return openTargetMsg(), false
		case v.Unit == krd.UnitZone:
			out.Value = u32(*v.Value)
		case v.Unit == krd.UnitBPM:
			out.Value = u32(*v.Value + heartRateOffset)
		case v.Unit == krd.UnitPercentMax:
			out.Value = u32(*v.Value)
		default:
			return openTargetMsg(), false
		}
	case krd.TargetPace:
		out.Type = fit.WktStepTargetSpeed
		switch {
		case v.IsRange():
			return custom(*v.Min*1000, *v.Max*1000), true
		case v.Value == nil:
			return openTargetMsg(), false
		case v.Unit == krd.UnitZone:
			out.Value = u32(*v.Value)
		case v.Unit == krd.UnitMPS:
			out.Value = u32(*v.Value * 1000)
		default:
			return openTargetMsg(), false
		}
	case krd.TargetCadence:
		out.Type = fit.WktStepTargetCadence
		switch {
		case v.IsRange():
			return custom(*v.Min, *v.Max), true
		case v.Value == nil:
			return openTargetMsg(), false
		case v.Unit == krd.UnitRPM, v.Unit == krd.UnitZone:
			out.Value = u32(*v.Value)
		default:
			return openTargetMsg(), false
		}
	default:
		return openTargetMsg(), false
	}
	return out, true
}
