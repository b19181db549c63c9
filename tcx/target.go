package tcx

import (
	"errors"
	"fmt"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/cascade"
	"github.com/lucasjlepore/kaiord/krd"
)

// Target tags as they appear in the field bag.
const (
	TargetHeartRate = "HeartRate"
	TargetSpeed     = "Speed"
	TargetCadence   = "Cadence"
	TargetNone      = "None"
)

type targetRule = cascade.Rule[bag.Bag, krd.Target]

func hasZone(b bag.Bag) bool {
	_, ok := b.Number(fieldZone)
	return ok
}

func hasRange(b bag.Bag) bool {
	_, lowOK := b.Number(fieldLow)
	_, highOK := b.Number(fieldHigh)
	return lowOK && highOK
}

func zoneRule(kind krd.TargetType) targetRule {
	return targetRule{
		Name:  "zone",
		Match: hasZone,
		Build: func(b bag.Bag) krd.Target {
			z, _ := b.Number(fieldZone)
			return krd.NewTarget(kind, krd.Single(krd.UnitZone, z))
		},
	}
}

func rangeRule(kind krd.TargetType) targetRule {
	return targetRule{
		Name:  "range",
		Match: hasRange,
		Build: func(b bag.Bag) krd.Target {
			low, _ := b.Number(fieldLow)
			high, _ := b.Number(fieldHigh)
			return krd.NewTarget(kind, krd.Range(low, high))
		},
	}
}

var (
	heartRateRules = []targetRule{zoneRule(krd.TargetHeartRate), rangeRule(krd.TargetHeartRate)}
	speedRules     = []targetRule{zoneRule(krd.TargetPace), rangeRule(krd.TargetPace)}
	cadenceRules   = []targetRule{rangeRule(krd.TargetCadence)}
)

// ConvertHeartRateTarget resolves a heart rate zone field bag: a predefined
// zone wins over a custom low/high pair. Anything else is open.
func ConvertHeartRateTarget(b bag.Bag) krd.Target {
	return cascade.First(heartRateRules, b, krd.OpenTarget())
}

// ConvertSpeedTarget resolves a speed zone field bag to a pace target in m/s.
func ConvertSpeedTarget(b bag.Bag) krd.Target {
	return cascade.First(speedRules, b, krd.OpenTarget())
}

// ConvertCadenceTarget resolves a cadence low/high pair in rpm.
func ConvertCadenceTarget(b bag.Bag) krd.Target {
	return cascade.First(cadenceRules, b, krd.OpenTarget())
}

// ConvertTarget dispatches on the bag's target tag.
func ConvertTarget(b bag.Bag) krd.Target {
	tag, _ := b.String(fieldTargetType)
	switch tag {
	case TargetHeartRate:
		return ConvertHeartRateTarget(b)
	case TargetSpeed:
		return ConvertSpeedTarget(b)
	case TargetCadence:
		return ConvertCadenceTarget(b)
	default:
		return krd.OpenTarget()
	}
}

// targetFields flattens a Target element into a field bag.
func targetFields(t *Target) bag.Bag {
	b := bag.Bag{}
	if t == nil {
		return b
	}
	switch xsiType(t.Attrs) {
	case "HeartRate_t":
		b[fieldTargetType] = TargetHeartRate
		zoneFields(b, t.HeartRateZone)
	case "Speed_t":
		b[fieldTargetType] = TargetSpeed
		zoneFields(b, t.SpeedZone)
	case "Cadence_t":
		b[fieldTargetType] = TargetCadence
		b.SetNumber(fieldLow, t.Low)
		b.SetNumber(fieldHigh, t.High)
	case "None_t":
		b[fieldTargetType] = TargetNone
	}
	return b
}

func zoneFields(b bag.Bag, z *Zone) {
	if z == nil {
		return
	}
	switch xsiType(z.Attrs) {
	case "PredefinedHeartRateZone_t", "PredefinedSpeedZone_t":
		b.SetNumber(fieldZone, z.Number)
	case "CustomHeartRateZone_t":
		setMeasure(b, fieldLow, z.Low)
		setMeasure(b, fieldHigh, z.High)
	case "CustomSpeedZone_t":
		b.SetNumber(fieldLow, z.LowInMetersPerSecond)
		b.SetNumber(fieldHigh, z.HighInMetersPerSecond)
	}
}

var (
	errZoneValue  = errors.New("zone unit requires value to be defined")
	errRangeValue = errors.New("range unit requires min and max to be defined")
	errBPMValue   = errors.New("bpm unit requires value to be defined")
	errPctValue   = errors.New("percent_max unit requires value to be defined")
)

// ConvertHeartRateZone encodes a KRD heart rate value as a TCX heart rate
// zone. It fails when the unit's required fields are missing.
func ConvertHeartRateZone(v *krd.TargetValue) (*Zone, error) {
	if v == nil {
		return nil, errors.New("heart rate target has no value")
	}
	switch v.Unit {
	case krd.UnitZone:
		if v.Value == nil {
			return nil, errZoneValue
		}
		return &Zone{
			Attrs:  typed("PredefinedHeartRateZone_t"),
			Number: krd.Float(*v.Value),
		}, nil
	case krd.UnitRange:
		if v.Min == nil || v.Max == nil {
			return nil, errRangeValue
		}
		return customHeartRateZone(*v.Min, *v.Max, "HeartRateInBeatsPerMinute_t"), nil
	case krd.UnitBPM:
		if v.Value == nil {
			return nil, errBPMValue
		}
		return customHeartRateZone(*v.Value, *v.Value, "HeartRateInBeatsPerMinute_t"), nil
	case krd.UnitPercentMax:
		if v.Value == nil {
			return nil, errPctValue
		}
		return customHeartRateZone(*v.Value, *v.Value, "HeartRateAsPercentOfMax_t"), nil
	default:
		return nil, fmt.Errorf("unsupported heart rate unit %q", v.Unit)
	}
}

func customHeartRateZone(low, high float64, measure string) *Zone {
	return &Zone{
		Attrs: typed("CustomHeartRateZone_t"),
		Low:   &Measure{Attrs: typed(measure), Value: low},
		High:  &Measure{Attrs: typed(measure), Value: high},
	}
}
