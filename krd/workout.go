package krd

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Intensity tags the role a step plays in the session.
type Intensity string

const (
	IntensityWarmup   Intensity = "warmup"
	IntensityActive   Intensity = "active"
	IntensityCooldown Intensity = "cooldown"
	IntensityRest     Intensity = "rest"
)

// Equipment is the swim equipment a step calls for.
type Equipment string

const (
	EquipmentNone          Equipment = "none"
	EquipmentSwimFins      Equipment = "swim_fins"
	EquipmentSwimKickboard Equipment = "swim_kickboard"
	EquipmentSwimPaddles   Equipment = "swim_paddles"
	EquipmentSwimPullBuoy  Equipment = "swim_pull_buoy"
	EquipmentSwimSnorkel   Equipment = "swim_snorkel"
)

// Workout is a structured, plannable workout.
type Workout struct {
	Name           string             `json:"name,omitempty"`
	Sport          Sport              `json:"sport"`
	SubSport       string             `json:"subSport,omitempty"`
	PoolLength     *float64           `json:"poolLength,omitempty"` // in PoolLengthUnit
	PoolLengthUnit string             `json:"poolLengthUnit,omitempty"`
	Steps          []WorkoutItem      `json:"steps"`
	Extensions     *WorkoutExtensions `json:"extensions,omitempty"`
}

// WorkoutExtensions keeps workout-level data only one format can express.
type WorkoutExtensions struct {
	Zwift *ZwiftWorkoutExtensions `json:"zwift,omitempty"`
}

// ZwiftWorkoutExtensions holds the ZWO header fields.
type ZwiftWorkoutExtensions struct {
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// WorkoutStep is one executable step.
type WorkoutStep struct {
	StepIndex    int             `json:"stepIndex"`
	Name         string          `json:"name,omitempty"`
	DurationType DurationType    `json:"durationType"`
	Duration     Duration        `json:"duration"`
	TargetType   TargetType      `json:"targetType"`
	Target       Target          `json:"target"`
	Intensity    Intensity       `json:"intensity,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Equipment    Equipment       `json:"equipment,omitempty"`
	Extensions   *StepExtensions `json:"extensions,omitempty"`
}

// NewStep builds a step whose type tags agree with its duration and target.
func NewStep(index int, d Duration, t Target) WorkoutStep {
	return WorkoutStep{
		StepIndex:    index,
		DurationType: d.Type,
		Duration:     d,
		TargetType:   t.Type,
		Target:       t,
	}
}

// StepExtensions is the per-format bag used to stash restoration data.
type StepExtensions struct {
	Zwift *ZwiftStepExtensions `json:"zwift,omitempty"`
	TCX   *TCXStepExtensions   `json:"tcx,omitempty"`
	FIT   *FITStepExtensions   `json:"fit,omitempty"`
}

// ZwiftStepExtensions holds ZWO-only step attributes.
type ZwiftStepExtensions struct {
	Cadence        *float64    `json:"cadence,omitempty"`
	CadenceResting *float64    `json:"cadenceResting,omitempty"`
	FlatRoad       *float64    `json:"flatRoad,omitempty"`
	TextEvents     []TextEvent `json:"textEvents,omitempty"`
}

// TextEvent is an on-screen message shown during a Zwift interval.
type TextEvent struct {
	Message    string   `json:"message"`
	TimeOffset *float64 `json:"timeoffset,omitempty"`
	DistOffset *float64 `json:"distoffset,omitempty"`
}

// TCXStepExtensions keeps TCX conditional durations that have no canonical form.
type TCXStepExtensions struct {
	HeartRateAbove *float64 `json:"heartRateAbove,omitempty"`
	HeartRateBelow *float64 `json:"heartRateBelow,omitempty"`
	CaloriesBurned *float64 `json:"caloriesBurned,omitempty"`
}

// FITStepExtensions keeps FIT step encodings that have no canonical form.
// RangeUnit records the unit of a range target when it is not the default
// for its kind (percent FTP for power, bpm for heart rate).
type FITStepExtensions struct {
	DurationType  string   `json:"durationType,omitempty"`
	DurationValue *float64 `json:"durationValue,omitempty"`
	TargetType    string   `json:"targetType,omitempty"`
	TargetValue   *float64 `json:"targetValue,omitempty"`
	RangeUnit     Unit     `json:"rangeUnit,omitempty"`
}

// FIT returns the fit extension bag, or nil.
func (s *WorkoutStep) FIT() *FITStepExtensions {
	if s == nil || s.Extensions == nil {
		return nil
	}
	return s.Extensions.FIT
}

// TCX returns the tcx extension bag, or nil.
func (s *WorkoutStep) TCX() *TCXStepExtensions {
	if s == nil || s.Extensions == nil {
		return nil
	}
	return s.Extensions.TCX
}

// Zwift returns the zwift extension bag, or nil.
func (s *WorkoutStep) Zwift() *ZwiftStepExtensions {
	if s == nil || s.Extensions == nil {
		return nil
	}
	return s.Extensions.Zwift
}

// EnsureExtensions allocates the extension bag on first use.
func (s *WorkoutStep) EnsureExtensions() *StepExtensions {
	if s.Extensions == nil {
		s.Extensions = &StepExtensions{}
	}
	return s.Extensions
}

// RepetitionBlock repeats its steps RepeatCount times.
type RepetitionBlock struct {
	RepeatCount int           `json:"repeatCount"`
	Steps       []WorkoutStep `json:"steps"`
}

// WorkoutItem holds either a step or a repetition block.
type WorkoutItem struct {
	Step  *WorkoutStep
	Block *RepetitionBlock
}

func StepItem(s WorkoutStep) WorkoutItem {
	return WorkoutItem{Step: &s}
}

func BlockItem(b RepetitionBlock) WorkoutItem {
	return WorkoutItem{Block: &b}
}

// MarshalJSON writes whichever variant is set.
func (i WorkoutItem) MarshalJSON() ([]byte, error) {
	switch {
	case i.Block != nil:
		return json.Marshal(i.Block)
	case i.Step != nil:
		return json.Marshal(i.Step)
	default:
		return nil, fmt.Errorf("workout item has neither step nor repetition block")
	}
}

// UnmarshalJSON treats any object carrying repeatCount as a repetition block.
func (i *WorkoutItem) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("workout item is null")
	}
	var probe struct {
		RepeatCount *int `json:"repeatCount"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.RepeatCount != nil {
		var b RepetitionBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("decode repetition block: %w", err)
		}
		*i = WorkoutItem{Block: &b}
		return nil
	}
	var s WorkoutStep
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode workout step: %w", err)
	}
	*i = WorkoutItem{Step: &s}
	return nil
}

// FlatSteps returns every step in execution order, blocks expanded once.
func (w *Workout) FlatSteps() []WorkoutStep {
	if w == nil {
		return nil
	}
	out := make([]WorkoutStep, 0, len(w.Steps))
	for _, item := range w.Steps {
		switch {
		case item.Step != nil:
			out = append(out, *item.Step)
		case item.Block != nil:
			out = append(out, item.Block.Steps...)
		}
	}
	return out
}
