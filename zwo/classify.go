package zwo

import (
	"strings"

	"github.com/lucasjlepore/kaiord/krd"
)

// IntervalType is the ZWO element an interval is written as.
type IntervalType string

const (
	SteadyState IntervalType = "SteadyState"
	Warmup      IntervalType = "Warmup"
	Cooldown    IntervalType = "Cooldown"
	Ramp        IntervalType = "Ramp"
	FreeRide    IntervalType = "FreeRide"
	IntervalsT  IntervalType = "IntervalsT"
)

// DetectIntervalType classifies a standalone step. Only power ranges become
// ramps; a heart rate or pace range is still a steady state.
func DetectIntervalType(s krd.WorkoutStep) IntervalType {
	switch {
	case s.Target.Type == krd.TargetOpen:
		return FreeRide
	case s.Target.Type == krd.TargetPower && s.Target.Value != nil && s.Target.Value.Unit == krd.UnitRange:
		switch s.Intensity {
		case krd.IntensityWarmup:
			return Warmup
		case krd.IntensityCooldown:
			return Cooldown
		default:
			return Ramp
		}
	default:
		return SteadyState
	}
}

// parseIntervalType matches element names case-insensitively.
func parseIntervalType(name string) (IntervalType, bool) {
	for _, t := range []IntervalType{SteadyState, Warmup, Cooldown, Ramp, FreeRide, IntervalsT} {
		if strings.EqualFold(string(t), name) {
			return t, true
		}
	}
	return "", false
}
