// Package krd defines the Kaiord Representation Definition, the canonical
// workout/activity model every format adapter reads into and writes from.
package krd

import (
	"strings"
	"time"
)

// Version is the KRD schema version emitted by every adapter.
const Version = "1.0"

// FileType identifies what a KRD document describes.
type FileType string

const (
	TypeWorkout  FileType = "workout"
	TypeActivity FileType = "activity"
	TypeCourse   FileType = "course"
)

// Sport is the closed set of sports the adapters understand.
type Sport string

const (
	SportGeneric  Sport = "generic"
	SportCycling  Sport = "cycling"
	SportRunning  Sport = "running"
	SportSwimming Sport = "swimming"
)

// ParseSport maps a free-form sport name onto the enum. Matching is
// case-insensitive; unknown names map to SportGeneric.
func ParseSport(name string) Sport {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cycling", "bike", "biking":
		return SportCycling
	case "running", "run":
		return SportRunning
	case "swimming", "swim":
		return SportSwimming
	default:
		return SportGeneric
	}
}

// IsRunning reports whether cadence for this sport is counted in steps per minute.
func (s Sport) IsRunning() bool {
	return s == SportRunning
}

// KRD is the top-level envelope.
type KRD struct {
	Version    string      `json:"version"`
	Type       FileType    `json:"type"`
	Metadata   Metadata    `json:"metadata"`
	Sessions   []Session   `json:"sessions,omitempty"`
	Laps       []Lap       `json:"laps,omitempty"`
	Records    []Record    `json:"records,omitempty"`
	Events     []Event     `json:"events,omitempty"`
	Extensions *Extensions `json:"extensions,omitempty"`
}

// Metadata describes where and when the source file was produced.
type Metadata struct {
	Created      time.Time `json:"created"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Product      string    `json:"product,omitempty"`
	SerialNumber string    `json:"serialNumber,omitempty"`
	Sport        Sport     `json:"sport"`
	SubSport     string    `json:"subSport,omitempty"`
}

// Extensions carries format-specific round-trip data.
type Extensions struct {
	StructuredWorkout *Workout       `json:"structured_workout,omitempty"`
	FIT               map[string]any `json:"fit,omitempty"`
}

// NewWorkoutKRD wraps a workout in a KRD envelope.
func NewWorkoutKRD(meta Metadata, w Workout) *KRD {
	if meta.Sport == "" {
		meta.Sport = w.Sport
	}
	return &KRD{
		Version:    Version,
		Type:       TypeWorkout,
		Metadata:   meta,
		Extensions: &Extensions{StructuredWorkout: &w},
	}
}

// Workout returns the structured workout, or nil for activities and courses.
func (k *KRD) Workout() *Workout {
	if k == nil || k.Extensions == nil {
		return nil
	}
	return k.Extensions.StructuredWorkout
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	out := v
	return &out
}

// Int returns a pointer to v.
func Int(v int) *int {
	out := v
	return &out
}
