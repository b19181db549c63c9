package zwo

import (
	"math"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/cascade"
	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/units"
)

// Heart rate restoration attributes. ZWO has no heart rate targets.
const (
	attrHeartRateMin        = keyPrefix + "heartRateMin"
	attrHeartRateMax        = keyPrefix + "heartRateMax"
	attrHeartRateBPM        = keyPrefix + "heartRateBpm"
	attrHeartRateZone       = keyPrefix + "heartRateZone"
	attrHeartRatePercentMax = keyPrefix + "heartRatePercentMax"
)

// ConvertZwiftCadenceTarget reads a ZWO cadence as a KRD cadence target in
// rpm. Running cadence is in steps per minute.
func ConvertZwiftCadenceTarget(cadence float64, sport krd.Sport) krd.Target {
	return krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, units.CadenceToRPM(cadence, sport)))
}

// ConvertKRDCadenceToZwift is the inverse of ConvertZwiftCadenceTarget.
func ConvertKRDCadenceToZwift(rpm float64, sport krd.Sport) float64 {
	return units.RPMToCadence(rpm, sport)
}

type heartRateRule = cascade.Rule[bag.Bag, krd.Target]

func heartRateSingle(key string, unit krd.Unit) heartRateRule {
	return heartRateRule{
		Name:  string(unit),
		Match: func(b bag.Bag) bool { return b.NumberPtr(key) != nil },
		Build: func(b bag.Bag) krd.Target {
			v, _ := b.Number(key)
			return krd.NewTarget(krd.TargetHeartRate, krd.Single(unit, v))
		},
	}
}

var heartRateRules = []heartRateRule{
	{
		Name: "range",
		Match: func(b bag.Bag) bool {
			return b.NumberPtr(attrHeartRateMin) != nil && b.NumberPtr(attrHeartRateMax) != nil
		},
		Build: func(b bag.Bag) krd.Target {
			low, _ := b.Number(attrHeartRateMin)
			high, _ := b.Number(attrHeartRateMax)
			return krd.NewTarget(krd.TargetHeartRate, krd.Range(low, high))
		},
	},
	heartRateSingle(attrHeartRateBPM, krd.UnitBPM),
	heartRateSingle(attrHeartRateZone, krd.UnitZone),
	heartRateSingle(attrHeartRatePercentMax, krd.UnitPercentMax),
}

// RestoreHeartRateTarget rebuilds a heart rate target from kaiord:
// attributes: range, then bpm, then zone, then percent of max. It returns
// nil when none are present.
func RestoreHeartRateTarget(b bag.Bag) *krd.Target {
	t, ok := cascade.Optional(heartRateRules, b)
	if !ok {
		return nil
	}
	return &t
}

// encodeHeartRateTarget is the inverse of RestoreHeartRateTarget.
func encodeHeartRateTarget(v *krd.TargetValue) bag.Bag {
	out := bag.Bag{}
	if v == nil {
		return out
	}
	switch v.Unit {
	case krd.UnitRange:
		out.SetNumber(attrHeartRateMin, v.Min)
		out.SetNumber(attrHeartRateMax, v.Max)
	case krd.UnitBPM:
		out.SetNumber(attrHeartRateBPM, v.Value)
	case krd.UnitZone:
		out.SetNumber(attrHeartRateZone, v.Value)
	case krd.UnitPercentMax:
		out.SetNumber(attrHeartRatePercentMax, v.Value)
	}
	return out
}

// toFraction converts percent FTP to the fraction ZWO stores.
func toFraction(percent float64) float64 {
	return roundMicro(units.PercentToFTPFraction(percent))
}

func toPercent(fraction float64) float64 {
	return roundMicro(units.FTPFractionToPercent(fraction))
}

// roundMicro drops the float noise picked up scaling by 100.
func roundMicro(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func midpoint(v *krd.TargetValue) float64 {
	return (*v.Min + *v.Max) / 2
}
