package krd

import "time"

// Session summarises one recorded session.
type Session struct {
	StartTime        time.Time `json:"startTime"`
	TotalElapsedTime float64   `json:"totalElapsedTime"`
	TotalTimerTime   *float64  `json:"totalTimerTime,omitempty"`
	TotalDistance    *float64  `json:"totalDistance,omitempty"`
	Sport            Sport     `json:"sport"`
	SubSport         string    `json:"subSport,omitempty"`
	AvgHeartRate     *float64  `json:"avgHeartRate,omitempty"`
	MaxHeartRate     *float64  `json:"maxHeartRate,omitempty"`
	AvgCadence       *float64  `json:"avgCadence,omitempty"`
	AvgPower         *float64  `json:"avgPower,omitempty"`
	MaxPower         *float64  `json:"maxPower,omitempty"`
	TotalCalories    *float64  `json:"totalCalories,omitempty"`
	TotalAscent      *float64  `json:"totalAscent,omitempty"`
}

// Lap summarises one lap.
type Lap struct {
	StartTime        time.Time `json:"startTime"`
	TotalElapsedTime float64   `json:"totalElapsedTime"`
	TotalDistance    *float64  `json:"totalDistance,omitempty"`
	AvgHeartRate     *float64  `json:"avgHeartRate,omitempty"`
	MaxHeartRate     *float64  `json:"maxHeartRate,omitempty"`
	AvgCadence       *float64  `json:"avgCadence,omitempty"`
	AvgPower         *float64  `json:"avgPower,omitempty"`
	TotalCalories    *float64  `json:"totalCalories,omitempty"`
}

// Position is a GPS fix in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is one time-series sample.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Position  *Position `json:"position,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	HeartRate *float64  `json:"heartRate,omitempty"`
	Cadence   *float64  `json:"cadence,omitempty"`
	Power     *float64  `json:"power,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
}

// Event marks a timer or device event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"eventType"`
	Data      *float64  `json:"data,omitempty"`
}
