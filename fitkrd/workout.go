package fitkrd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/units"
)

var errNoWorkout = errors.New("krd document has no structured workout")

var intensities = map[fit.Intensity]krd.Intensity{
	fit.IntensityActive:   krd.IntensityActive,
	fit.IntensityRest:     krd.IntensityRest,
	fit.IntensityWarmup:   krd.IntensityWarmup,
	fit.IntensityCooldown: krd.IntensityCooldown,
}

var equipment = map[fit.WorkoutEquipment]krd.Equipment{
	fit.WorkoutEquipmentNone:          krd.EquipmentNone,
	fit.WorkoutEquipmentSwimFins:      krd.EquipmentSwimFins,
	fit.WorkoutEquipmentSwimKickboard: krd.EquipmentSwimKickboard,
	fit.WorkoutEquipmentSwimPaddles:   krd.EquipmentSwimPaddles,
	fit.WorkoutEquipmentSwimPullBuoy:  krd.EquipmentSwimPullBuoy,
	fit.WorkoutEquipmentSwimSnorkel:   krd.EquipmentSwimSnorkel,
}

func isRepeatType(t fit.WktStepDuration) bool {
	switch t {
	case fit.WktStepDurationRepeatUntilStepsCmplt,
		fit.WktStepDurationRepeatUntilTime,
		fit.WktStepDurationRepeatUntilDistance,
		fit.WktStepDurationRepeatUntilCalories,
		fit.WktStepDurationRepeatUntilHrLessThan,
		fit.WktStepDurationRepeatUntilHrGreaterThan,
		fit.WktStepDurationRepeatUntilPowerLessThan,
		fit.WktStepDurationRepeatUntilPowerGreaterThan:
		return true
	default:
		return false
	}
}

func readWorkout(decoded *fit.File, opts Options) (*krd.KRD, error) {
	wf, err := decoded.Workout()
	if err != nil {
		return nil, fmt.Errorf("workout FIT expected: %w", err)
	}

	meta := metadataFromFileID(decoded.FileId, opts)
	w := krd.Workout{Sport: krd.SportGeneric}
	if wf.Workout != nil {
		w.Name = wf.Workout.WktName
		w.Sport = sportFromFIT(wf.Workout.Sport)
		if sub := subSportName(wf.Workout.SubSport); wf.Workout.SubSport != fit.SubSportGeneric && uint8(wf.Workout.SubSport) != 0xFF {
			w.SubSport = sub
		}
		readPoolLength(wf.Workout, &w)
	}
	meta.Sport = w.Sport
	meta.SubSport = w.SubSport

	w.Steps = StepsFromMessages(wf.WorkoutSteps, opts.log())
	return krd.NewWorkoutKRD(meta, w), nil
}

// FIT always stores pool length in meters; KRD keeps the display unit.
func readPoolLength(m *fit.WorkoutMsg, w *krd.Workout) {
	if validUint16(m.PoolLength) == 0 {
		return
	}
	meters := float64(m.PoolLength) / 100
	if m.PoolLengthUnit == fit.DisplayMeasureStatute {
		w.PoolLength = krd.Float(units.ConvertMetersToLength(meters, units.Yards))
		w.PoolLengthUnit = string(units.Yards)
		return
	}
	w.PoolLength = krd.Float(meters)
	w.PoolLengthUnit = string(units.Meters)
}

func writePoolLength(w *krd.Workout, m *fit.WorkoutMsg) {
	if w.PoolLength == nil || *w.PoolLength <= 0 {
		return
	}
	if units.LengthUnit(w.PoolLengthUnit) == units.Yards {
		m.PoolLength = uint16(u32(units.ConvertLengthToMeters(*w.PoolLength, units.Yards) * 100))
		m.PoolLengthUnit = fit.DisplayMeasureStatute
		return
	}
	m.PoolLength = uint16(u32(*w.PoolLength * 100))
	m.PoolLengthUnit = fit.DisplayMeasureMetric
}

type indexedItem struct {
	first int // message index of the item's first step
	item  krd.WorkoutItem
}

// StepsFromMessages converts workout_step messages to KRD items, folding
// each repeat_until_steps_cmplt step and the steps it repeats into a
// repetition block.
func StepsFromMessages(msgs []*fit.WorkoutStepMsg, log logrus.FieldLogger) []krd.WorkoutItem {
	items := make([]indexedItem, 0, len(msgs))
	for i, m := range msgs {
		if m == nil {
			continue
		}
		f := FieldsFromMsg(m)
		if m.DurationType == fit.WktStepDurationRepeatUntilStepsCmplt {
			items = foldRepeat(items, i, f, log)
			continue
		}
		s := StepFromFields(i, f, log)
		items = append(items, indexedItem{first: i, item: krd.StepItem(s)})
	}

	out := make([]krd.WorkoutItem, len(items))
	for i, it := range items {
		out[i] = it.item
	}
	return out
}

func foldRepeat(items []indexedItem, index int, f StepFields, log logrus.FieldLogger) []indexedItem {
	entry := log.WithField("step_index", index)
	if f.DurationStep == nil {
		entry.Warn("repeat step has no start index, dropped")
		return items
	}
	from := int(*f.DurationStep)
	count := 1
	if f.RepeatSteps != nil && *f.RepeatSteps >= 1 {
		count = int(*f.RepeatSteps)
	} else {
		entry.Warn("repeat step has no repeat count, using 1")
	}

	start := len(items)
	for start > 0 && items[start-1].first >= from {
		start--
	}
	if start == len(items) {
		entry.WithField("repeat_from", from).Warn("repeat step repeats nothing, dropped")
		return items
	}

	block := krd.RepetitionBlock{RepeatCount: count}
	for _, it := range items[start:] {
		if it.item.Step == nil {
			entry.Warn("nested repeat cannot be represented, repeat dropped")
			return items
		}
		block.Steps = append(block.Steps, *it.item.Step)
	}
	first := items[start].first
	return append(items[:start], indexedItem{first: first, item: krd.BlockItem(block)})
}

// StepFromFields builds one KRD step. Durations and targets with no
// canonical form become open and are kept in extensions.fit.
func StepFromFields(index int, f StepFields, log logrus.FieldLogger) krd.WorkoutStep {
	d := ConvertDuration(f)
	dur := krd.OpenDuration()
	if d != nil {
		dur = *d
	}
	t := ConvertTarget(f)

	s := krd.NewStep(index, dur, t)
	s.Name = f.Name
	s.Notes = f.Notes
	s.Intensity = intensities[f.Intensity]
	s.Equipment = equipment[f.Equipment]

	entry := log.WithField("step_index", index)
	if d == nil && f.DurationType != fit.WktStepDurationOpen {
		ext := ensureFIT(&s)
		ext.DurationType = durationName(f.DurationType)
		ext.DurationValue = f.DurationValue
		entry.WithField("duration_type", ext.DurationType).Warn("FIT duration has no KRD equivalent, using open")
	}
	if t.Type == krd.TargetOpen && !isRepeatType(f.DurationType) && f.TargetType != fit.WktStepTargetOpen && uint8(f.TargetType) != 0xFF {
		ext := ensureFIT(&s)
		ext.TargetType = targetName(f.TargetType)
		ext.TargetValue = f.RawTarget
		entry.WithField("target_type", ext.TargetType).Warn("FIT target has no KRD equivalent, using open")
	}
	if u := rangeUnit(f, t); u != "" {
		ensureFIT(&s).RangeUnit = u
	}
	return s
}

func ensureFIT(s *krd.WorkoutStep) *krd.FITStepExtensions {
	ext := s.EnsureExtensions()
	if ext.FIT == nil {
		ext.FIT = &krd.FITStepExtensions{}
	}
	return ext.FIT
}

// Write encodes a KRD workout as a FIT workout file.
func Write(out io.Writer, k *krd.KRD, opts Options) error {
	w := k.Workout()
	if w == nil {
		return fmt.Errorf("write FIT: %w", errNoWorkout)
	}

	file, err := fit.NewFile(fit.FileTypeWorkout, fit.NewHeader(fit.V20, true))
	if err != nil {
		return fmt.Errorf("new fit file: %w", err)
	}
	file.FileId.TimeCreated = k.Metadata.Created
	file.FileId.Manufacturer = fit.ManufacturerDevelopment

	wf, err := file.Workout()
	if err != nil {
		return fmt.Errorf("workout accessor: %w", err)
	}

	msg := fit.NewWorkoutMsg()
	msg.WktName = w.Name
	msg.Sport = sportToFIT(w.Sport)
	writePoolLength(w, msg)

	wf.WorkoutSteps = MessagesFromSteps(w.Steps, opts.log())
	msg.NumValidSteps = uint16(len(wf.WorkoutSteps))
	wf.Workout = msg

	if err := fit.Encode(out, file, binary.LittleEndian); err != nil {
		return fmt.Errorf("encode fit: %w", err)
	}
	return nil
}

// MessagesFromSteps flattens KRD items into workout_step messages. Each
// repetition block becomes its steps followed by a repeat_until_steps_cmplt
// step pointing back at the first of them.
func MessagesFromSteps(items []krd.WorkoutItem, log logrus.FieldLogger) []*fit.WorkoutStepMsg {
	indexOf := map[int]int{}
	n := 0
	for _, item := range items {
		switch {
		case item.Step != nil:
			indexOf[item.Step.StepIndex] = n
			n++
		case item.Block != nil:
			for _, s := range item.Block.Steps {
				indexOf[s.StepIndex] = n
				n++
			}
			n++
		}
	}
	lookup := func(stepIndex int) int {
		if i, ok := indexOf[stepIndex]; ok {
			return i
		}
		return stepIndex
	}

	msgs := make([]*fit.WorkoutStepMsg, 0, n)
	for _, item := range items {
		switch {
		case item.Step != nil:
			msgs = append(msgs, stepMsg(len(msgs), *item.Step, lookup, log))
		case item.Block != nil:
			first := len(msgs)
			for _, s := range item.Block.Steps {
				msgs = append(msgs, stepMsg(len(msgs), s, lookup, log))
			}
			m := fit.NewWorkoutStepMsg()
			m.MessageIndex = fit.MessageIndex(len(msgs))
			m.DurationType = fit.WktStepDurationRepeatUntilStepsCmplt
			m.DurationValue = uint32(first)
			m.TargetType = fit.WktStepTargetOpen
			m.TargetValue = uint32(item.Block.RepeatCount)
			msgs = append(msgs, m)
		}
	}
	return msgs
}

func stepMsg(index int, s krd.WorkoutStep, lookup func(int) int, log logrus.FieldLogger) *fit.WorkoutStepMsg {
	entry := log.WithFields(logrus.Fields{"step_index": s.StepIndex})
	ext := s.FIT()

	m := fit.NewWorkoutStepMsg()
	m.MessageIndex = fit.MessageIndex(index)
	m.WktStepName = s.Name
	m.Notes = s.Notes
	for fi, ki := range intensities {
		if ki == s.Intensity {
			m.Intensity = fi
		}
	}
	for fe, ke := range equipment {
		if ke == s.Equipment {
			m.Equipment = fe
		}
	}

	dm, ok := encodeDuration(s.Duration, lookup)
	if !ok {
		entry.WithField("duration_type", s.Duration.Type).Warn("duration cannot be written to FIT, using open")
	}
	if s.Duration.Type == krd.DurationOpen && ext != nil && ext.DurationType != "" {
		if t, ok := parseDurationName(ext.DurationType); ok {
			dm = durationMsg{Type: t, Value: invalidUint32}
			if ext.DurationValue != nil {
				dm.Value = uint32(*ext.DurationValue)
			}
		}
	}
	m.DurationType = dm.Type
	m.DurationValue = dm.Value

	if dm.Target != nil {
		m.TargetType = fit.WktStepTargetOpen
		m.TargetValue = *dm.Target
		return m
	}

	var rangeAs krd.Unit
	if ext != nil {
		rangeAs = ext.RangeUnit
	}
	tm, ok := encodeTarget(s.Target, rangeAs)
	if !ok {
		entry.WithField("target_type", s.Target.Type).Warn("target cannot be written to FIT, using open")
	}
	if s.Target.Type == krd.TargetOpen && ext != nil && ext.TargetType != "" {
		if t, ok := parseTargetName(ext.TargetType); ok {
			tm = targetMsg{Type: t, Value: invalidUint32, Low: invalidUint32, High: invalidUint32}
			if ext.TargetValue != nil {
				tm.Value = uint32(*ext.TargetValue)
			}
		}
	}
	m.TargetType = tm.Type
	m.TargetValue = tm.Value
	m.CustomTargetValueLow = tm.Low
	m.CustomTargetValueHigh = tm.High
	return m
}
