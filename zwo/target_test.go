package zwo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/krd"
)

func TestCadenceRoundTrip(t *testing.T) {
	for _, v := range []float64{160, 170, 181} {
		got := ConvertZwiftCadenceTarget(v, krd.SportRunning)
		rpm, ok := got.Value.Number()
		require.True(t, ok)
		assert.Equal(t, v, ConvertKRDCadenceToZwift(rpm, krd.SportRunning))
	}
	assert.Equal(t,
		krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 90)),
		ConvertZwiftCadenceTarget(90, krd.SportCycling))
	assert.Equal(t, 90.0, ConvertKRDCadenceToZwift(90, krd.SportCycling))
}

func TestRestoreHeartRateTargetPriority(t *testing.T) {
	cases := []struct {
		name string
		in   bag.Bag
		want *krd.Target
	}{
		{
			name: "range wins",
			in:   bag.Bag{"kaiord:heartRateMin": 130.0, "kaiord:heartRateMax": 150.0, "kaiord:heartRateBpm": 140.0},
			want: targetPtr(krd.NewTarget(krd.TargetHeartRate, krd.Range(130, 150))),
		},
		{
			name: "lone min falls through to bpm",
			in:   bag.Bag{"kaiord:heartRateMin": 130.0, "kaiord:heartRateBpm": 140.0, "kaiord:heartRateZone": 3.0},
			want: targetPtr(krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitBPM, 140))),
		},
		{
			name: "zone before percent max",
			in:   bag.Bag{"kaiord:heartRateZone": 3.0, "kaiord:heartRatePercentMax": 80.0},
			want: targetPtr(krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitZone, 3))),
		},
		{
			name: "percent max",
			in:   bag.Bag{"kaiord:heartRatePercentMax": 80.0},
			want: targetPtr(krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitPercentMax, 80))),
		},
		{
			name: "string is ignored",
			in:   bag.Bag{"kaiord:heartRateBpm": "140"},
		},
		{
			name: "empty",
			in:   bag.Bag{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RestoreHeartRateTarget(tc.in))
		})
	}
}

func TestHeartRateTargetRoundTrip(t *testing.T) {
	for _, v := range []krd.TargetValue{
		krd.Range(120, 140),
		krd.Single(krd.UnitBPM, 150),
		krd.Single(krd.UnitZone, 2),
		krd.Single(krd.UnitPercentMax, 85),
	} {
		v := v
		want := krd.NewTarget(krd.TargetHeartRate, v)
		assert.Equal(t, &want, RestoreHeartRateTarget(encodeHeartRateTarget(&v)), string(v.Unit))
	}
}

func TestFractionConversions(t *testing.T) {
	assert.Equal(t, 1.1, toFraction(110))
	assert.Equal(t, 88.0, toPercent(0.88))
	assert.Equal(t, 55.0, toPercent(toFraction(55)))
}

func targetPtr(t krd.Target) *krd.Target {
	return &t
}
