// Package zwo converts Zwift workout (ZWO) files to and from KRD.
package zwo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/logging"
	"github.com/lucasjlepore/kaiord/internal/restore"
	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/units"
)

// keyPrefix is the field bag prefix of restoration attributes.
const keyPrefix = restore.ZwiftPrefix

const (
	sportTypeBike = "bike"
	sportTypeRun  = "run"
)

type Options struct {
	// Logger receives lossy-conversion warnings. Nil discards them.
	Logger logrus.FieldLogger
	// Now stamps metadata.created; ZWO files carry no creation time.
	Now func() time.Time
	// RepetitionPolicy applies to blocks that are not an on/off pair.
	RepetitionPolicy RepetitionPolicy
	// Author is written when the workout has no Zwift author of its own.
	Author string
	// ThresholdPaceSecondsPerKm maps running pace targets to the Power
	// fraction. Zero disables the mapping.
	ThresholdPaceSecondsPerKm float64
}

func (o Options) log() logrus.FieldLogger {
	return logging.OrDiscard(o.Logger).WithField("format", "zwo")
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Read decodes a ZWO workout file.
func Read(r io.Reader, opts Options) (*krd.KRD, error) {
	var doc WorkoutFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ZWO document: %w", err)
	}

	sport := krd.SportCycling
	if strings.EqualFold(strings.TrimSpace(doc.SportType), sportTypeRun) {
		sport = krd.SportRunning
	}
	w := krd.Workout{
		Name:  strings.TrimSpace(doc.Name),
		Sport: sport,
	}
	if ext := headerExtensions(doc); ext != nil {
		w.Extensions = &krd.WorkoutExtensions{Zwift: ext}
	}

	d := newDecoder(sport, opts)
	for _, el := range doc.Workout.Elements {
		item, ok := d.element(el)
		if ok {
			w.Steps = append(w.Steps, item)
		}
	}
	return krd.NewWorkoutKRD(krd.Metadata{Created: opts.now()}, w), nil
}

func headerExtensions(doc WorkoutFile) *krd.ZwiftWorkoutExtensions {
	ext := krd.ZwiftWorkoutExtensions{
		Author:      strings.TrimSpace(doc.Author),
		Description: strings.TrimSpace(doc.Description),
	}
	if doc.Tags != nil {
		for _, t := range doc.Tags.Tag {
			ext.Tags = append(ext.Tags, t.Name)
		}
	}
	if ext.Author == "" && ext.Description == "" && len(ext.Tags) == 0 {
		return nil
	}
	return &ext
}

// Write encodes a KRD workout as a ZWO file.
func Write(w io.Writer, k *krd.KRD, opts Options) error {
	wk := k.Workout()
	if wk == nil {
		return errors.New("write ZWO: krd document has no structured workout")
	}

	intervals, err := ConvertStepsToZwiftIntervals(wk.Steps, wk.Sport, opts)
	if err != nil {
		return fmt.Errorf("write ZWO: %w", err)
	}

	doc := WorkoutFile{
		XmlnsKaiord: bag.Namespace,
		Author:      opts.Author,
		Name:        wk.Name,
		SportType:   sportTypeBike,
	}
	if wk.Sport.IsRunning() {
		doc.SportType = sportTypeRun
	} else if wk.Sport != krd.SportCycling {
		opts.log().WithField("sport", wk.Sport).Warn("ZWO supports bike and run only, writing bike")
	}
	if wk.Extensions != nil && wk.Extensions.Zwift != nil {
		z := wk.Extensions.Zwift
		if z.Author != "" {
			doc.Author = z.Author
		}
		doc.Description = z.Description
		if len(z.Tags) > 0 {
			doc.Tags = &Tags{}
			for _, t := range z.Tags {
				doc.Tags.Tag = append(doc.Tags.Tag, Tag{Name: t})
			}
		}
	}
	for _, in := range intervals {
		doc.Workout.Elements = append(doc.Workout.Elements, intervalElement(in))
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode ZWO document: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func intervalElement(in Interval) Element {
	el := Element{
		XMLName: xml.Name{Local: string(in.Type)},
		Attrs:   xmlAttrs(in.Attrs),
	}
	for _, te := range in.TextEvents {
		el.TextEvents = append(el.TextEvents, TextEvent{
			TimeOffset: te.TimeOffset,
			DistOffset: te.DistOffset,
			Message:    te.Message,
		})
	}
	return el
}

// decoder turns ZWO elements into KRD items.
type decoder struct {
	sport          krd.Sport
	thresholdSpeed float64
	codec          restore.Codec
	log            logrus.FieldLogger
	next           int
}

func newDecoder(sport krd.Sport, opts Options) *decoder {
	d := &decoder{
		sport: sport,
		codec: restore.Codec{Prefix: keyPrefix, Log: opts.log()},
		log:   opts.log(),
	}
	if opts.ThresholdPaceSecondsPerKm > 0 && sport.IsRunning() {
		d.thresholdSpeed = units.PaceToSpeed(opts.ThresholdPaceSecondsPerKm)
	}
	return d
}

func (d *decoder) index() int {
	i := d.next
	d.next++
	return i
}

func (d *decoder) element(el Element) (krd.WorkoutItem, bool) {
	kind, ok := parseIntervalType(el.XMLName.Local)
	if !ok {
		d.log.WithField("element", el.XMLName.Local).Warn("unknown ZWO element skipped")
		return krd.WorkoutItem{}, false
	}
	b := elementBag(el.Attrs)
	events := textEvents(el.TextEvents)

	if kind == IntervalsT {
		return krd.BlockItem(d.intervalsT(b, events)), true
	}

	s := krd.NewStep(d.index(), readDuration(b, attrDuration, d.log), d.target(kind, b))
	s.Intensity = defaultIntensity(kind)
	if orig, ok := b.String(keyPrefix + restore.AttrIntensity); ok {
		s.Intensity = krd.Intensity(orig)
	}

	z := krd.ZwiftStepExtensions{
		CadenceResting: b.NumberPtr(attrCadenceResting),
		FlatRoad:       b.NumberPtr(attrFlatRoad),
		TextEvents:     events,
	}
	if s.Target.Type != krd.TargetCadence {
		z.Cadence = b.NumberPtr(attrCadence)
	}
	setZwift(&s, z)
	return krd.StepItem(s), true
}

func (d *decoder) target(kind IntervalType, b bag.Bag) krd.Target {
	if t := d.codec.DecodeTarget(b); t != nil {
		return *t
	}
	if t := RestoreHeartRateTarget(b); t != nil {
		return *t
	}

	switch kind {
	case Warmup, Cooldown, Ramp:
		low, lowOK := b.Number(attrPowerLow)
		high, highOK := b.Number(attrPowerHigh)
		if lowOK && highOK {
			return krd.NewTarget(krd.TargetPower, krd.Range(toPercent(low), toPercent(high)))
		}
	case SteadyState:
		if p, ok := b.Number(attrPower); ok {
			return d.power(p)
		}
		if c, ok := b.Number(attrCadence); ok {
			return ConvertZwiftCadenceTarget(c, d.sport)
		}
	}
	return krd.OpenTarget()
}

// power reads a Power fraction. For running with a threshold pace it is a
// fraction of threshold speed.
func (d *decoder) power(fraction float64) krd.Target {
	if d.thresholdSpeed > 0 {
		return krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitMPS, roundMicro(fraction*d.thresholdSpeed)))
	}
	return krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, toPercent(fraction)))
}

func (d *decoder) intervalsT(b bag.Bag, events []krd.TextEvent) krd.RepetitionBlock {
	count := 1
	if r, ok := b.Number(attrRepeat); ok && r >= 1 {
		count = int(r)
	} else {
		d.log.Warn("IntervalsT has no Repeat, using 1")
	}

	on := d.intervalStep(b, attrOnDuration, attrOnPower, attrCadence, krd.IntensityActive)
	off := d.intervalStep(b, attrOffDuration, attrOffPower, attrCadenceResting, krd.IntensityRest)
	if len(events) > 0 {
		on.EnsureExtensions()
		if on.Extensions.Zwift == nil {
			on.Extensions.Zwift = &krd.ZwiftStepExtensions{}
		}
		on.Extensions.Zwift.TextEvents = events
	}
	return krd.RepetitionBlock{RepeatCount: count, Steps: []krd.WorkoutStep{on, off}}
}

func (d *decoder) intervalStep(b bag.Bag, durationKey, powerKey, cadenceKey string, intensity krd.Intensity) krd.WorkoutStep {
	target := krd.OpenTarget()
	cadence := b.NumberPtr(cadenceKey)
	if p, ok := b.Number(powerKey); ok {
		target = krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, toPercent(p)))
	} else if cadence != nil {
		target = ConvertZwiftCadenceTarget(*cadence, d.sport)
		cadence = nil
	}

	s := krd.NewStep(d.index(), timeOrOpen(b, durationKey), target)
	s.Intensity = intensity
	setZwift(&s, krd.ZwiftStepExtensions{Cadence: cadence})
	return s
}

// setZwift attaches z unless it is empty.
func setZwift(s *krd.WorkoutStep, z krd.ZwiftStepExtensions) {
	if z.Cadence == nil && z.CadenceResting == nil && z.FlatRoad == nil && len(z.TextEvents) == 0 {
		return
	}
	s.EnsureExtensions().Zwift = &z
}

func textEvents(in []TextEvent) []krd.TextEvent {
	if len(in) == 0 {
		return nil
	}
	out := make([]krd.TextEvent, 0, len(in))
	for _, te := range in {
		out = append(out, krd.TextEvent{
			Message:    te.Message,
			TimeOffset: te.TimeOffset,
			DistOffset: te.DistOffset,
		})
	}
	return out
}
