// Package restore stashes KRD durations and targets that a format cannot
// express as prefixed vendor attributes, and rebuilds them on read.
//
// The set of restorable kinds is closed: each kind names the attribute that
// carries its payload. Adding a kind is a change to durationKinds or
// targetKinds only.
package restore

import (
	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/krd"
)

// Attribute prefixes in use by the XML adapters.
const (
	ZwiftPrefix = "kaiord:"
	TCXPrefix   = "@_kaiord:"
)

// Attribute names, without prefix.
const (
	AttrDurationType     = "originalDurationType"
	AttrDurationBpm      = "originalDurationBpm"
	AttrDurationWatts    = "originalDurationWatts"
	AttrDurationCalories = "originalDurationCalories"
	AttrDurationMeters   = "originalDurationMeters"
	AttrDurationSeconds  = "originalDurationSeconds"
	AttrRepeatFrom       = "originalRepeatFrom"

	AttrTargetType  = "originalTargetType"
	AttrTargetUnit  = "originalTargetUnit"
	AttrTargetValue = "originalTargetValue"
	AttrTargetMin   = "originalTargetMin"
	AttrTargetMax   = "originalTargetMax"

	// AttrIntensity keeps a step intensity the format's element cannot carry.
	AttrIntensity = "originalIntensity"
)

// durationKinds maps each restorable duration type to its payload attribute.
var durationKinds = map[krd.DurationType]string{
	krd.DurationHeartRateLessThan: AttrDurationBpm,
	krd.DurationPowerLessThan:     AttrDurationWatts,
	krd.DurationPowerGreaterThan:  AttrDurationWatts,
	krd.DurationCalories:          AttrDurationCalories,
	krd.DurationDistance:          AttrDurationMeters,

	krd.DurationRepeatUntilTime:                 AttrDurationSeconds,
	krd.DurationRepeatUntilDistance:             AttrDurationMeters,
	krd.DurationRepeatUntilCalories:             AttrDurationCalories,
	krd.DurationRepeatUntilHeartRateLessThan:    AttrDurationBpm,
	krd.DurationRepeatUntilHeartRateGreaterThan: AttrDurationBpm,
	krd.DurationRepeatUntilPowerLessThan:        AttrDurationWatts,
	krd.DurationRepeatUntilPowerGreaterThan:     AttrDurationWatts,
}

// targetKinds lists the target types a format may need to stash.
var targetKinds = map[krd.TargetType]bool{
	krd.TargetPower:     true,
	krd.TargetHeartRate: true,
	krd.TargetPace:      true,
	krd.TargetCadence:   true,
}

// Codec encodes and decodes restoration attributes under one prefix.
type Codec struct {
	Prefix string
	Log    logrus.FieldLogger
}

func (c Codec) key(attr string) string {
	return c.Prefix + attr
}

func (c Codec) log() logrus.FieldLogger {
	return logging.OrDiscard(c.Log)
}

// Restorable reports whether d can be stashed and restored.
func Restorable(t krd.DurationType) bool {
	_, ok := durationKinds[t]
	return ok
}

// PayloadAttr names the attribute carrying t's value, without prefix.
func PayloadAttr(t krd.DurationType) (string, bool) {
	a, ok := durationKinds[t]
	return a, ok
}

// EncodeDuration returns the attributes that restore d, or nil when d is not
// a restorable kind or is missing its value.
func (c Codec) EncodeDuration(d krd.Duration) bag.Bag {
	attr, ok := durationKinds[d.Type]
	if !ok {
		return nil
	}
	v, ok := d.Value()
	if !ok {
		return nil
	}
	out := bag.Bag{
		c.key(AttrDurationType): string(d.Type),
		c.key(attr):             v,
	}
	if d.Type.IsRepeat() && d.RepeatFrom != nil {
		out[c.key(AttrRepeatFrom)] = float64(*d.RepeatFrom)
	}
	return out
}

// DecodeDuration rebuilds the stashed duration. It returns nil when the type
// attribute is absent or unknown, or when the payload is missing or is not
// numeric.
func (c Codec) DecodeDuration(b bag.Bag) *krd.Duration {
	typ, ok := b.String(c.key(AttrDurationType))
	if !ok {
		return nil
	}
	dt := krd.DurationType(typ)
	attr, ok := durationKinds[dt]
	if !ok {
		return nil
	}
	v, ok := b.Number(c.key(attr))
	if !ok {
		return nil
	}

	var d krd.Duration
	if dt.IsRepeat() {
		from, ok := b.Number(c.key(AttrRepeatFrom))
		if !ok {
			return nil
		}
		d = krd.RepeatUntilDuration(dt, v, int(from))
	} else {
		d = krd.RepeatUntilDuration(dt, v, 0)
		d.RepeatFrom = nil
	}

	c.log().WithFields(logrus.Fields{
		"duration_type": typ,
		"value":         v,
		"prefix":        c.Prefix,
	}).Debug("restored original duration")
	return &d
}

// EncodeTarget returns the attributes that restore t, or nil when t is not
// a restorable kind.
func (c Codec) EncodeTarget(t krd.Target) bag.Bag {
	if !targetKinds[t.Type] || t.Value == nil {
		return nil
	}
	out := bag.Bag{
		c.key(AttrTargetType): string(t.Type),
		c.key(AttrTargetUnit): string(t.Value.Unit),
	}
	out.SetNumber(c.key(AttrTargetValue), t.Value.Value)
	out.SetNumber(c.key(AttrTargetMin), t.Value.Min)
	out.SetNumber(c.key(AttrTargetMax), t.Value.Max)
	return out
}

// DecodeTarget rebuilds a stashed target, or returns nil.
func (c Codec) DecodeTarget(b bag.Bag) *krd.Target {
	typ, ok := b.String(c.key(AttrTargetType))
	if !ok || !targetKinds[krd.TargetType(typ)] {
		return nil
	}
	unit, ok := b.String(c.key(AttrTargetUnit))
	if !ok {
		return nil
	}

	v := krd.TargetValue{Unit: krd.Unit(unit)}
	if v.Unit == krd.UnitRange {
		v.Min = b.NumberPtr(c.key(AttrTargetMin))
		v.Max = b.NumberPtr(c.key(AttrTargetMax))
		if !v.IsRange() {
			return nil
		}
	} else {
		v.Value = b.NumberPtr(c.key(AttrTargetValue))
		if v.Value == nil {
			return nil
		}
	}

	c.log().WithFields(logrus.Fields{
		"target_type": typ,
		"unit":        unit,
		"prefix":      c.Prefix,
	}).Debug("restored original target")
	t := krd.NewTarget(krd.TargetType(typ), v)
	return &t
}
