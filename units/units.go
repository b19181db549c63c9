// Package units holds the pure numeric conversions shared by the format adapters.
package units

import (
	"math"

	"github.com/lucasjlepore/kaiord/krd"
)

const (
	semicirclesPerDegree = float64(1<<31) / 180.0
	metersPerYard        = 0.9144
	defaultPercentFTP    = 100.0
)

// LengthUnit is the unit a pool or distance length is expressed in.
type LengthUnit string

const (
	Meters LengthUnit = "meters"
	Yards  LengthUnit = "yards"
)

// SemicirclesToDegrees converts a Garmin semicircle coordinate to degrees.
func SemicirclesToDegrees(semicircles float64) float64 {
	return semicircles / semicirclesPerDegree
}

// DegreesToSemicircles converts degrees to semicircles. The caller keeps the
// input within [-180, 180].
func DegreesToSemicircles(degrees float64) int64 {
	return int64(math.Round(degrees * semicirclesPerDegree))
}

// ValidateCoordinates reports whether a semicircle pair decodes to a real GPS fix.
func ValidateCoordinates(latSemicircles, lonSemicircles float64) bool {
	if !isFinite(latSemicircles) || !isFinite(lonSemicircles) {
		return false
	}
	lat := SemicirclesToDegrees(latSemicircles)
	lon := SemicirclesToDegrees(lonSemicircles)
	return math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}

// ConvertLengthToMeters converts a length in unit to meters.
func ConvertLengthToMeters(length float64, unit LengthUnit) float64 {
	if unit == Yards {
		return length * metersPerYard
	}
	return length
}

// ConvertMetersToLength is the inverse of ConvertLengthToMeters.
func ConvertMetersToLength(meters float64, unit LengthUnit) float64 {
	if unit == Yards {
		return meters / metersPerYard
	}
	return meters
}

var powerZonePercentFTP = map[int]float64{
	1: 55,
	2: 75,
	3: 90,
	4: 105,
	5: 120,
	6: 150,
	7: 200,
}

// ConvertPowerZoneToPercentFTP maps a 1-7 power zone to the percent of FTP
// it is centred on. Any other zone maps to 100.
func ConvertPowerZoneToPercentFTP(zone int) float64 {
	if pct, ok := powerZonePercentFTP[zone]; ok {
		return pct
	}
	return defaultPercentFTP
}

// PaceToSpeed converts seconds per kilometre to metres per second.
func PaceToSpeed(secondsPerKm float64) float64 {
	return 1000 / secondsPerKm
}

// SpeedToPace converts metres per second to seconds per kilometre.
func SpeedToPace(mps float64) float64 {
	return 1000 / mps
}

// CadenceToRPM converts a source cadence to canonical rpm. Running cadence
// is counted in steps per minute, two steps per revolution.
func CadenceToRPM(cadence float64, sport krd.Sport) float64 {
	if sport.IsRunning() {
		return cadence / 2
	}
	return cadence
}

// RPMToCadence is the inverse of CadenceToRPM.
func RPMToCadence(rpm float64, sport krd.Sport) float64 {
	if sport.IsRunning() {
		return rpm * 2
	}
	return rpm
}

// FTPFractionToPercent converts 0.75 to 75.
func FTPFractionToPercent(fraction float64) float64 {
	return fraction * 100
}

// PercentToFTPFraction converts 75 to 0.75.
func PercentToFTPFraction(percent float64) float64 {
	return percent / 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
