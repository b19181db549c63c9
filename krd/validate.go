package krd

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidKRD is wrapped by every validation failure.
var ErrInvalidKRD = errors.New("invalid krd")

// Validate checks the structural invariants of a KRD document and reports
// every violation it finds.
func Validate(k *KRD) error {
	if k == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidKRD)
	}

	var errs error
	if k.Version == "" {
		errs = multierr.Append(errs, errors.New("version is required"))
	}
	switch k.Type {
	case TypeWorkout, TypeActivity, TypeCourse:
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown type %q", k.Type))
	}
	if k.Metadata.Created.IsZero() {
		errs = multierr.Append(errs, errors.New("metadata.created is required"))
	}
	if k.Metadata.Sport == "" {
		errs = multierr.Append(errs, errors.New("metadata.sport is required"))
	}
	if k.Type == TypeWorkout {
		w := k.Workout()
		if w == nil {
			errs = multierr.Append(errs, errors.New("workout document has no structured_workout extension"))
		} else {
			errs = multierr.Append(errs, ValidateWorkout(w))
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKRD, errs)
	}
	return nil
}

// ValidateWorkout checks step ordering and every step's duration and target.
func ValidateWorkout(w *Workout) error {
	var errs error
	last := -1
	checkStep := func(path string, s WorkoutStep) {
		if s.StepIndex <= last {
			errs = multierr.Append(errs, fmt.Errorf("%s: stepIndex %d is not increasing (previous %d)", path, s.StepIndex, last))
		}
		last = s.StepIndex
		errs = multierr.Append(errs, validateStep(path, s))
	}

	for i, item := range w.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		switch {
		case item.Step != nil:
			checkStep(path, *item.Step)
		case item.Block != nil:
			if item.Block.RepeatCount < 1 {
				errs = multierr.Append(errs, fmt.Errorf("%s: repeatCount must be >= 1, got %d", path, item.Block.RepeatCount))
			}
			if len(item.Block.Steps) == 0 {
				errs = multierr.Append(errs, fmt.Errorf("%s: repetition block has no steps", path))
			}
			for j, s := range item.Block.Steps {
				checkStep(fmt.Sprintf("%s.steps[%d]", path, j), s)
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: empty workout item", path))
		}
	}
	return errs
}

func validateStep(path string, s WorkoutStep) error {
	var errs error
	if s.DurationType != s.Duration.Type {
		errs = multierr.Append(errs, fmt.Errorf("%s: durationType %q does not match duration.type %q", path, s.DurationType, s.Duration.Type))
	}
	errs = multierr.Append(errs, validateDuration(path, s.Duration))

	if s.TargetType != s.Target.Type {
		errs = multierr.Append(errs, fmt.Errorf("%s: targetType %q does not match target.type %q", path, s.TargetType, s.Target.Type))
	}
	errs = multierr.Append(errs, validateTarget(path, s.Target))
	return errs
}

func validateDuration(path string, d Duration) error {
	if !d.Type.Known() {
		return fmt.Errorf("%s: unknown duration type %q", path, d.Type)
	}
	if d.Type == DurationOpen {
		return nil
	}
	v, ok := d.Value()
	if !ok {
		return fmt.Errorf("%s: duration %q is missing its value", path, d.Type)
	}
	if v < 0 {
		return fmt.Errorf("%s: duration %q must be non-negative, got %v", path, d.Type, v)
	}
	if d.Type.IsRepeat() && (d.RepeatFrom == nil || *d.RepeatFrom < 0) {
		return fmt.Errorf("%s: duration %q requires a non-negative repeatFrom", path, d.Type)
	}
	return nil
}

func validateTarget(path string, t Target) error {
	switch t.Type {
	case TargetOpen:
		return nil
	case TargetPower, TargetHeartRate, TargetPace, TargetCadence:
	default:
		return fmt.Errorf("%s: unknown target type %q", path, t.Type)
	}
	if t.Value == nil {
		return fmt.Errorf("%s: %s target has no value", path, t.Type)
	}
	if t.Value.Unit == UnitRange {
		if !t.Value.IsRange() {
			return fmt.Errorf("%s: range target requires min and max", path)
		}
		return nil
	}
	if t.Value.Value == nil {
		return fmt.Errorf("%s: %s target in %s requires a value", path, t.Type, t.Value.Unit)
	}
	return nil
}
