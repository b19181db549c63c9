package zwo

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/restore"
	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/units"
)

// ErrUnsupportedRepetition is returned under PolicyError for repetition
// blocks that are not an on/off pair.
var ErrUnsupportedRepetition = errors.New("repetition block must have exactly 2 steps")

// RepetitionPolicy decides what happens to blocks IntervalsT cannot hold.
type RepetitionPolicy string

const (
	PolicyDrop    RepetitionPolicy = "drop"
	PolicyError   RepetitionPolicy = "error"
	PolicyFlatten RepetitionPolicy = "flatten"
)

// ParseRepetitionPolicy accepts "", which means PolicyDrop.
func ParseRepetitionPolicy(s string) (RepetitionPolicy, error) {
	switch p := RepetitionPolicy(s); p {
	case "":
		return PolicyDrop, nil
	case PolicyDrop, PolicyError, PolicyFlatten:
		return p, nil
	default:
		return "", fmt.Errorf("unknown repetition policy %q", s)
	}
}

// Interval is one encoded ZWO element.
type Interval struct {
	Type       IntervalType
	Attrs      bag.Bag
	TextEvents []krd.TextEvent
}

// Intervals is an encoded workout in execution order.
type Intervals []Interval

// Bucket groups the intervals of one type.
type Bucket struct {
	Type      IntervalType
	Intervals []Interval
}

// Buckets groups intervals by type. Buckets are ordered by the first
// occurrence of their type; each keeps its intervals in order.
func (iv Intervals) Buckets() []Bucket {
	var out []Bucket
	pos := map[IntervalType]int{}
	for _, in := range iv {
		i, ok := pos[in.Type]
		if !ok {
			i = len(out)
			pos[in.Type] = i
			out = append(out, Bucket{Type: in.Type})
		}
		out[i].Intervals = append(out[i].Intervals, in)
	}
	return out
}

// EncodeIntervalsT encodes a two-step on/off block. Durations other than
// time and distance are left out; power is written only for percent FTP
// targets.
func EncodeIntervalsT(block krd.RepetitionBlock, sport krd.Sport) (Interval, error) {
	if len(block.Steps) != 2 {
		return Interval{}, fmt.Errorf("%w: got %d", ErrUnsupportedRepetition, len(block.Steps))
	}
	on, off := block.Steps[0], block.Steps[1]

	attrs := bag.Bag{attrRepeat: float64(block.RepeatCount)}
	setIntervalDuration(attrs, attrOnDuration, on.Duration)
	setIntervalDuration(attrs, attrOffDuration, off.Duration)
	setIntervalPower(attrs, attrOnPower, on.Target)
	setIntervalPower(attrs, attrOffPower, off.Target)
	setIntervalCadence(attrs, attrCadence, on, sport)
	setIntervalCadence(attrs, attrCadenceResting, off, sport)

	out := Interval{Type: IntervalsT, Attrs: attrs}
	if z := on.Zwift(); z != nil {
		out.TextEvents = z.TextEvents
	}
	return out, nil
}

func setIntervalDuration(b bag.Bag, key string, d krd.Duration) {
	switch d.Type {
	case krd.DurationTime:
		b.SetNumber(key, d.Seconds)
	case krd.DurationDistance:
		b.SetNumber(key, d.Meters)
	}
}

func setIntervalPower(b bag.Bag, key string, t krd.Target) {
	if v, ok := t.Value.Number(); ok && t.Is(krd.TargetPower, krd.UnitPercentFTP) {
		b[key] = toFraction(v)
	}
}

func setIntervalCadence(b bag.Bag, key string, s krd.WorkoutStep, sport krd.Sport) {
	if v, ok := s.Target.Value.Number(); ok && s.Target.Is(krd.TargetCadence, krd.UnitRPM) {
		b[key] = ConvertKRDCadenceToZwift(v, sport)
		return
	}
	if z := s.Zwift(); z != nil {
		b.SetNumber(key, z.Cadence)
	}
}

// encoder turns KRD items into ZWO intervals.
type encoder struct {
	sport  krd.Sport
	policy RepetitionPolicy
	// thresholdSpeed in m/s; zero when no threshold pace is configured.
	thresholdSpeed float64
	codec          restore.Codec
	log            logrus.FieldLogger
}

func newEncoder(sport krd.Sport, opts Options) encoder {
	e := encoder{
		sport:  sport,
		policy: opts.RepetitionPolicy,
		codec:  restore.Codec{Prefix: keyPrefix, Log: opts.log()},
		log:    opts.log(),
	}
	if e.policy == "" {
		e.policy = PolicyDrop
	}
	if opts.ThresholdPaceSecondsPerKm > 0 && sport.IsRunning() {
		e.thresholdSpeed = units.PaceToSpeed(opts.ThresholdPaceSecondsPerKm)
	}
	return e
}

// ConvertStepsToZwiftIntervals encodes a workout's items. Standalone steps
// are classified with DetectIntervalType; two-step blocks become IntervalsT.
// Other blocks follow the configured RepetitionPolicy.
func ConvertStepsToZwiftIntervals(items []krd.WorkoutItem, sport krd.Sport, opts Options) (Intervals, error) {
	e := newEncoder(sport, opts)
	out := make(Intervals, 0, len(items))
	for i, item := range items {
		switch {
		case item.Step != nil:
			out = append(out, e.step(*item.Step))
		case item.Block != nil && len(item.Block.Steps) == 2:
			in, err := EncodeIntervalsT(*item.Block, sport)
			if err != nil {
				return nil, err
			}
			out = append(out, in)
		case item.Block != nil:
			flat, err := e.unsupportedBlock(i, *item.Block)
			if err != nil {
				return nil, err
			}
			out = append(out, flat...)
		}
	}
	return out, nil
}

func (e encoder) unsupportedBlock(pos int, block krd.RepetitionBlock) ([]Interval, error) {
	entry := e.log.WithFields(logrus.Fields{
		"item":         pos,
		"block_steps":  len(block.Steps),
		"repeat_count": block.RepeatCount,
	})
	switch e.policy {
	case PolicyError:
		return nil, fmt.Errorf("item %d: %w: got %d", pos, ErrUnsupportedRepetition, len(block.Steps))
	case PolicyFlatten:
		entry.Warn("repetition block flattened")
		out := make([]Interval, 0, block.RepeatCount*len(block.Steps))
		for r := 0; r < block.RepeatCount; r++ {
			for _, s := range block.Steps {
				out = append(out, e.step(s))
			}
		}
		return out, nil
	default:
		entry.Warn("repetition block dropped")
		return nil, nil
	}
}

// defaultIntensity is what a reader assumes for an element of type t.
func defaultIntensity(t IntervalType) krd.Intensity {
	switch t {
	case Warmup:
		return krd.IntensityWarmup
	case Cooldown:
		return krd.IntensityCooldown
	default:
		return krd.IntensityActive
	}
}

func (e encoder) step(s krd.WorkoutStep) Interval {
	kind := DetectIntervalType(s)
	entry := e.log.WithFields(logrus.Fields{
		"step_index":    s.StepIndex,
		"interval_type": kind,
	})

	attrs := EncodeDuration(s.Duration, entry)
	attrs.Merge(e.target(kind, s.Target, entry))

	z := s.Zwift()
	if z != nil {
		if !attrs.Has(attrCadence) {
			attrs.SetNumber(attrCadence, z.Cadence)
		}
		attrs.SetNumber(attrCadenceResting, z.CadenceResting)
		attrs.SetNumber(attrFlatRoad, z.FlatRoad)
	}
	if s.Intensity != "" && s.Intensity != defaultIntensity(kind) {
		attrs[keyPrefix+restore.AttrIntensity] = string(s.Intensity)
	}

	out := Interval{Type: kind, Attrs: attrs}
	if z != nil {
		out.TextEvents = z.TextEvents
	}
	return out
}

func (e encoder) target(kind IntervalType, t krd.Target, entry logrus.FieldLogger) bag.Bag {
	out := bag.Bag{}
	v := t.Value
	if kind == FreeRide || v == nil {
		return out
	}

	switch kind {
	case Warmup, Cooldown, Ramp:
		if v.IsRange() {
			out[attrPowerLow] = toFraction(*v.Min)
			out[attrPowerHigh] = toFraction(*v.Max)
		}
		return out
	}

	lossy := func(msg string) bag.Bag {
		entry.WithFields(logrus.Fields{"target_type": t.Type, "unit": v.Unit}).Warn(msg)
		out.Merge(e.codec.EncodeTarget(t))
		return out
	}

	switch t.Type {
	case krd.TargetPower:
		n, ok := v.Number()
		switch {
		case ok && v.Unit == krd.UnitPercentFTP:
			out[attrPower] = toFraction(n)
			return out
		case ok && v.Unit == krd.UnitZone:
			out[attrPower] = toFraction(units.ConvertPowerZoneToPercentFTP(int(n)))
			out.Merge(e.codec.EncodeTarget(t))
			return out
		}
		return lossy("power target needs FTP for ZWO, kept in attributes")

	case krd.TargetHeartRate:
		entry.WithField("unit", v.Unit).Warn("heart rate target has no ZWO equivalent, kept in attributes")
		return encodeHeartRateTarget(v)

	case krd.TargetPace:
		if e.thresholdSpeed <= 0 {
			return lossy("pace target needs a threshold pace for ZWO, kept in attributes")
		}
		if n, ok := v.Number(); ok && v.Unit == krd.UnitMPS {
			out[attrPower] = roundMicro(n / e.thresholdSpeed)
			return out
		}
		if v.IsRange() {
			out[attrPower] = roundMicro(midpoint(v) / e.thresholdSpeed)
			out.Merge(e.codec.EncodeTarget(t))
			return out
		}
		return lossy("pace target has no ZWO equivalent, kept in attributes")

	case krd.TargetCadence:
		if n, ok := v.Number(); ok && v.Unit == krd.UnitRPM {
			out[attrCadence] = ConvertKRDCadenceToZwift(n, e.sport)
			return out
		}
		if v.IsRange() {
			out[attrCadence] = ConvertKRDCadenceToZwift(midpoint(v), e.sport)
			out.Merge(e.codec.EncodeTarget(t))
			return out
		}
		return lossy("cadence target has no ZWO equivalent, kept in attributes")
	}
	return out
}
