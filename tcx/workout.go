package tcx

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/internal/restore"
	"github.com/lucasjlepore/kaiord/krd"
)

const (
	intensityActive  = "Active"
	intensityResting = "Resting"
)

func readWorkout(w Workout, opts Options) *krd.KRD {
	out := krd.Workout{
		Name:  w.Name,
		Sport: sportFromTCX(w.Sport),
	}
	r := stepReader{codec: opts.codec(), log: opts.log()}
	out.Steps = r.items(w.Steps)
	return krd.NewWorkoutKRD(krd.Metadata{Created: opts.now()}, out)
}

type stepReader struct {
	codec restore.Codec
	log   logrus.FieldLogger
	next  int
}

func (r *stepReader) items(steps []Step) []krd.WorkoutItem {
	out := make([]krd.WorkoutItem, 0, len(steps))
	for _, s := range steps {
		if xsiType(s.Attrs) != "Repeat_t" {
			out = append(out, krd.StepItem(r.step(s)))
			continue
		}

		entry := r.log.WithField("step_id", s.StepID)
		block := krd.RepetitionBlock{RepeatCount: s.Repetitions}
		if block.RepeatCount < 1 {
			entry.Warn("repeat has no repetitions, using 1")
			block.RepeatCount = 1
		}
		for _, c := range s.Children {
			block.Steps = append(block.Steps, r.leaves(c)...)
		}
		if len(block.Steps) == 0 {
			entry.Warn("repeat has no children, dropped")
			continue
		}
		out = append(out, krd.BlockItem(block))
	}
	return out
}

// leaves returns the steps under a repeat child. KRD blocks do not nest, so
// a nested repeat contributes its children once.
func (r *stepReader) leaves(s Step) []krd.WorkoutStep {
	if xsiType(s.Attrs) != "Repeat_t" {
		return []krd.WorkoutStep{r.step(s)}
	}
	r.log.WithFields(logrus.Fields{
		"step_id":     s.StepID,
		"repetitions": s.Repetitions,
	}).Warn("nested repeat flattened")

	var out []krd.WorkoutStep
	for _, c := range s.Children {
		out = append(out, r.leaves(c)...)
	}
	return out
}

func (r *stepReader) step(s Step) krd.WorkoutStep {
	attrs := attrBag(s.Attrs)

	var ext *krd.TCXStepExtensions
	dur := r.codec.DecodeDuration(attrs)
	if dur == nil {
		res := ConvertDuration(durationFields(s.Duration))
		dur, ext = &res.Duration, res.Extensions
	}
	target := r.codec.DecodeTarget(attrs)
	if target == nil {
		t := ConvertTarget(targetFields(s.Target))
		target = &t
	}

	out := krd.NewStep(r.next, *dur, *target)
	r.next++
	out.Name = s.Name
	out.Intensity = readIntensity(s.Intensity, attrs)
	if ext != nil {
		out.EnsureExtensions().TCX = ext
	}
	return out
}

func readIntensity(v string, attrs bag.Bag) krd.Intensity {
	if orig, ok := attrs.String(keyPrefix + restore.AttrIntensity); ok {
		switch i := krd.Intensity(orig); i {
		case krd.IntensityWarmup, krd.IntensityCooldown, krd.IntensityActive, krd.IntensityRest:
			return i
		}
	}
	switch v {
	case intensityResting:
		return krd.IntensityRest
	case intensityActive:
		return krd.IntensityActive
	default:
		return ""
	}
}

func writeWorkout(w *krd.Workout, opts Options) (Workout, error) {
	sw := stepWriter{codec: opts.codec(), log: opts.log()}
	steps, err := sw.items(w.Steps)
	if err != nil {
		return Workout{}, err
	}
	return Workout{
		Sport: sportToTCX(w.Sport),
		Name:  w.Name,
		Steps: steps,
	}, nil
}

type stepWriter struct {
	codec restore.Codec
	log   logrus.FieldLogger
	id    int
}

func (sw *stepWriter) nextID() int {
	sw.id++
	return sw.id
}

func (sw *stepWriter) items(items []krd.WorkoutItem) ([]Step, error) {
	out := make([]Step, 0, len(items))
	for _, item := range items {
		switch {
		case item.Step != nil:
			s, err := sw.step(*item.Step, "Step_t")
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		case item.Block != nil:
			repeat := Step{
				Attrs:       typed("Repeat_t"),
				StepID:      sw.nextID(),
				Repetitions: item.Block.RepeatCount,
			}
			for _, child := range item.Block.Steps {
				s, err := sw.step(child, "Step_t")
				if err != nil {
					return nil, err
				}
				repeat.Children = append(repeat.Children, s)
			}
			out = append(out, repeat)
		}
	}
	return out, nil
}

func (sw *stepWriter) step(s krd.WorkoutStep, kind string) (Step, error) {
	entry := sw.log.WithField("step_index", s.StepIndex)
	attrs := bag.Bag{}

	dur, stash := sw.duration(s, entry)
	attrs.Merge(stash)

	target, stash, err := sw.target(s.Target, entry)
	if err != nil {
		return Step{}, fmt.Errorf("step %d: %w", s.StepIndex, err)
	}
	attrs.Merge(stash)

	intensity := intensityActive
	switch s.Intensity {
	case krd.IntensityRest:
		intensity = intensityResting
	case krd.IntensityWarmup, krd.IntensityCooldown:
		attrs[keyPrefix+restore.AttrIntensity] = string(s.Intensity)
	}

	return Step{
		Attrs:     typed(kind, attrs.XMLAttrs(keyPrefix)...),
		StepID:    sw.nextID(),
		Name:      s.Name,
		Duration:  dur,
		Intensity: intensity,
		Target:    target,
	}, nil
}

func bpmMeasure(v float64) *Measure {
	return &Measure{Attrs: typed("HeartRateInBeatsPerMinute_t"), Value: v}
}

func (sw *stepWriter) duration(s krd.WorkoutStep, entry logrus.FieldLogger) (*Duration, bag.Bag) {
	d := s.Duration
	v, hasValue := d.Value()

	switch d.Type {
	case krd.DurationTime:
		if hasValue {
			return &Duration{Attrs: typed("Time_t"), Seconds: krd.Float(v)}, nil
		}
	case krd.DurationDistance:
		if hasValue {
			return &Duration{Attrs: typed("Distance_t"), Meters: krd.Float(v)}, nil
		}
	case krd.DurationOpen:
		return conditionDuration(s.TCX()), nil
	case krd.DurationHeartRateLessThan:
		if hasValue {
			return &Duration{Attrs: typed("HeartRateBelow_t"), HeartRate: bpmMeasure(v)}, sw.codec.EncodeDuration(d)
		}
	case krd.DurationCalories:
		if hasValue {
			return &Duration{Attrs: typed("CaloriesBurned_t"), Calories: krd.Float(v)}, sw.codec.EncodeDuration(d)
		}
	}

	entry.WithField("duration_type", d.Type).Warn("duration cannot be expressed in TCX, writing user initiated")
	return &Duration{Attrs: typed("UserInitiated_t")}, sw.codec.EncodeDuration(d)
}

// conditionDuration writes back the heart rate and calorie conditions kept
// from an earlier TCX read.
func conditionDuration(ext *krd.TCXStepExtensions) *Duration {
	switch {
	case ext == nil:
	case ext.HeartRateAbove != nil:
		return &Duration{Attrs: typed("HeartRateAbove_t"), HeartRate: bpmMeasure(*ext.HeartRateAbove)}
	case ext.HeartRateBelow != nil:
		return &Duration{Attrs: typed("HeartRateBelow_t"), HeartRate: bpmMeasure(*ext.HeartRateBelow)}
	case ext.CaloriesBurned != nil:
		return &Duration{Attrs: typed("CaloriesBurned_t"), Calories: krd.Float(*ext.CaloriesBurned)}
	}
	return &Duration{Attrs: typed("UserInitiated_t")}
}

func noTarget() *Target {
	return &Target{Attrs: typed("None_t")}
}

// target encodes t. Values TCX can only approximate are written as the
// closest TCX target plus restoration attributes.
func (sw *stepWriter) target(t krd.Target, entry logrus.FieldLogger) (*Target, bag.Bag, error) {
	if t.Type == krd.TargetOpen || t.Value == nil {
		return noTarget(), nil, nil
	}
	v := t.Value

	switch t.Type {
	case krd.TargetHeartRate:
		zone, err := ConvertHeartRateZone(v)
		if err != nil {
			return nil, nil, err
		}
		out := &Target{Attrs: typed("HeartRate_t"), HeartRateZone: zone}
		if v.Unit == krd.UnitBPM || v.Unit == krd.UnitPercentMax {
			return out, sw.codec.EncodeTarget(t), nil
		}
		return out, nil, nil

	case krd.TargetPace:
		switch {
		case v.Unit == krd.UnitZone && v.Value != nil:
			return &Target{Attrs: typed("Speed_t"), SpeedZone: &Zone{
				Attrs:  typed("PredefinedSpeedZone_t"),
				Number: krd.Float(*v.Value),
			}}, nil, nil
		case v.IsRange():
			return speedTarget(*v.Min, *v.Max), nil, nil
		case v.Unit == krd.UnitMPS && v.Value != nil:
			return speedTarget(*v.Value, *v.Value), sw.codec.EncodeTarget(t), nil
		}

	case krd.TargetCadence:
		switch {
		case v.IsRange():
			return &Target{Attrs: typed("Cadence_t"), Low: krd.Float(*v.Min), High: krd.Float(*v.Max)}, nil, nil
		case v.Value != nil:
			return &Target{Attrs: typed("Cadence_t"), Low: krd.Float(*v.Value), High: krd.Float(*v.Value)}, sw.codec.EncodeTarget(t), nil
		}
	}

	entry.WithFields(logrus.Fields{
		"target_type": t.Type,
		"unit":        v.Unit,
	}).Warn("target cannot be expressed in TCX, writing none")
	return noTarget(), sw.codec.EncodeTarget(t), nil
}

func speedTarget(low, high float64) *Target {
	return &Target{Attrs: typed("Speed_t"), SpeedZone: &Zone{
		Attrs:                 typed("CustomSpeedZone_t"),
		ViewAs:                "Pace",
		LowInMetersPerSecond:  krd.Float(low),
		HighInMetersPerSecond: krd.Float(high),
	}}
}
