package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucasjlepore/kaiord/krd"
)

func TestSemicircleRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45.123456, -33.865143, 89.999999, -179.5, 180} {
		got := SemicirclesToDegrees(float64(DegreesToSemicircles(deg)))
		assert.InDelta(t, deg, got, 1e-6, "degrees %v", deg)
	}
}

func TestSemicirclesKnownValue(t *testing.T) {
	assert.InDelta(t, 180.0, SemicirclesToDegrees(math.Pow(2, 31)), 1e-9)
	assert.Equal(t, int64(1<<30), DegreesToSemicircles(90))
}

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{name: "origin", lat: 0, lon: 0, want: true},
		{name: "valid", lat: float64(DegreesToSemicircles(51.5)), lon: float64(DegreesToSemicircles(-0.12)), want: true},
		{name: "lat nan", lat: math.NaN(), lon: 0, want: false},
		{name: "lon inf", lat: 0, lon: math.Inf(1), want: false},
		{name: "lat over 90", lat: float64(DegreesToSemicircles(90.5)), lon: 0, want: false},
		{name: "lon over 180", lat: 0, lon: 1.01 * math.Pow(2, 31), want: false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidateCoordinates(tc.lat, tc.lon), tc.name)
	}
}

func TestConvertLengthToMeters(t *testing.T) {
	assert.Equal(t, 50.0, ConvertLengthToMeters(50, Meters))
	assert.InDelta(t, 22.86, ConvertLengthToMeters(25, Yards), 0.01)
	for _, m := range []float64{0, 1, 22.86, 1000} {
		assert.InDelta(t, m, ConvertLengthToMeters(ConvertMetersToLength(m, Yards), Yards), 1e-9)
	}
}

func TestConvertPowerZoneToPercentFTP(t *testing.T) {
	want := map[int]float64{1: 55, 2: 75, 3: 90, 4: 105, 5: 120, 6: 150, 7: 200}
	for zone, pct := range want {
		assert.Equal(t, pct, ConvertPowerZoneToPercentFTP(zone))
	}
	for _, zone := range []int{0, -1, 8, 100} {
		assert.Equal(t, 100.0, ConvertPowerZoneToPercentFTP(zone))
	}
}

func TestPaceConversions(t *testing.T) {
	assert.InDelta(t, 3.333333, PaceToSpeed(300), 1e-6)
	assert.InDelta(t, 300, SpeedToPace(PaceToSpeed(300)), 1e-9)
}

func TestCadenceRoundTrip(t *testing.T) {
	for _, v := range []float64{80, 85, 170, 181} {
		assert.Equal(t, v, RPMToCadence(CadenceToRPM(v, krd.SportRunning), krd.SportRunning))
		assert.Equal(t, v, CadenceToRPM(v, krd.SportCycling))
	}
	assert.Equal(t, 90.0, CadenceToRPM(180, krd.SportRunning))
	assert.Equal(t, 180.0, RPMToCadence(90, krd.SportRunning))
}

func TestFTPFraction(t *testing.T) {
	assert.Equal(t, 75.0, FTPFractionToPercent(0.75))
	assert.Equal(t, 0.75, PercentToFTPFraction(75))
}
