package tcx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/krd"
)

func TestConvertHeartRateTargetPriority(t *testing.T) {
	cases := []struct {
		name string
		in   bag.Bag
		want krd.Target
	}{
		{
			name: "zone wins over range",
			in:   bag.Bag{"zone": 3.0, "low": 140.0, "high": 150.0},
			want: krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitZone, 3)),
		},
		{
			name: "range",
			in:   bag.Bag{"low": 140.0, "high": 150.0},
			want: krd.NewTarget(krd.TargetHeartRate, krd.Range(140, 150)),
		},
		{
			name: "lone low is open",
			in:   bag.Bag{"low": 140.0},
			want: krd.OpenTarget(),
		},
		{
			name: "empty",
			in:   bag.Bag{},
			want: krd.OpenTarget(),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConvertHeartRateTarget(tc.in))
		})
	}
}

func TestConvertSpeedAndCadenceTargets(t *testing.T) {
	assert.Equal(t,
		krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitZone, 2)),
		ConvertSpeedTarget(bag.Bag{"zone": 2.0, "low": 3.0, "high": 3.5}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetPace, krd.Range(3, 3.5)),
		ConvertSpeedTarget(bag.Bag{"low": 3.0, "high": 3.5}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetCadence, krd.Range(85, 95)),
		ConvertCadenceTarget(bag.Bag{"low": 85.0, "high": 95.0}))
	assert.Equal(t, krd.OpenTarget(), ConvertCadenceTarget(bag.Bag{"zone": 1.0}))
}

func TestConvertTargetDispatch(t *testing.T) {
	hr := targetFields(&Target{
		Attrs:         typed("HeartRate_t"),
		HeartRateZone: customHeartRateZone(130, 145, "HeartRateInBeatsPerMinute_t"),
	})
	assert.Equal(t, krd.NewTarget(krd.TargetHeartRate, krd.Range(130, 145)), ConvertTarget(hr))

	speed := targetFields(speedTarget(2.8, 3.1))
	assert.Equal(t, krd.NewTarget(krd.TargetPace, krd.Range(2.8, 3.1)), ConvertTarget(speed))

	assert.Equal(t, krd.OpenTarget(), ConvertTarget(targetFields(noTarget())))
	assert.Equal(t, krd.OpenTarget(), ConvertTarget(bag.Bag{"targetType": "Power", "low": 1.0, "high": 2.0}))
}

func TestConvertHeartRateZone(t *testing.T) {
	zone, err := ConvertHeartRateZone(&krd.TargetValue{Unit: krd.UnitZone, Value: krd.Float(2)})
	require.NoError(t, err)
	assert.Equal(t, "PredefinedHeartRateZone_t", xsiType(zone.Attrs))
	assert.Equal(t, 2.0, *zone.Number)

	zone, err = ConvertHeartRateZone(&krd.TargetValue{Unit: krd.UnitPercentMax, Value: krd.Float(80)})
	require.NoError(t, err)
	assert.Equal(t, "CustomHeartRateZone_t", xsiType(zone.Attrs))
	assert.Equal(t, "HeartRateAsPercentOfMax_t", xsiType(zone.Low.Attrs))
	assert.Equal(t, 80.0, zone.High.Value)

	cases := []struct {
		in   *krd.TargetValue
		want string
	}{
		{in: &krd.TargetValue{Unit: krd.UnitZone}, want: "zone unit requires value to be defined"},
		{in: &krd.TargetValue{Unit: krd.UnitRange, Min: krd.Float(120)}, want: "range unit requires min and max to be defined"},
		{in: &krd.TargetValue{Unit: krd.UnitBPM}, want: "bpm unit requires value to be defined"},
		{in: &krd.TargetValue{Unit: krd.UnitPercentMax}, want: "percent_max unit requires value to be defined"},
		{in: &krd.TargetValue{Unit: krd.UnitWatts, Value: krd.Float(200)}, want: `unsupported heart rate unit "watts"`},
	}
	for _, tc := range cases {
		_, err := ConvertHeartRateZone(tc.in)
		assert.EqualError(t, err, tc.want)
	}
}
