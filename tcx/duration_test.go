package tcx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/krd"
)

func TestConvertDuration(t *testing.T) {
	cases := []struct {
		name string
		in   bag.Bag
		want DurationResult
	}{
		{
			name: "time",
			in:   bag.Bag{"durationType": "Time", "seconds": 300.0},
			want: DurationResult{Duration: krd.TimeDuration(300)},
		},
		{
			name: "distance",
			in:   bag.Bag{"durationType": "Distance", "meters": 1000},
			want: DurationResult{Duration: krd.DistanceDuration(1000)},
		},
		{
			name: "lap button",
			in:   bag.Bag{"durationType": "LapButton"},
			want: DurationResult{Duration: krd.OpenDuration()},
		},
		{
			name: "heart rate above",
			in:   bag.Bag{"durationType": "HeartRateAbove", "bpm": 160.0},
			want: DurationResult{
				Duration:   krd.OpenDuration(),
				Extensions: &krd.TCXStepExtensions{HeartRateAbove: krd.Float(160)},
			},
		},
		{
			name: "heart rate below",
			in:   bag.Bag{"durationType": "HeartRateBelow", "bpm": 120.0},
			want: DurationResult{
				Duration:   krd.OpenDuration(),
				Extensions: &krd.TCXStepExtensions{HeartRateBelow: krd.Float(120)},
			},
		},
		{
			name: "calories burned",
			in:   bag.Bag{"durationType": "CaloriesBurned", "calories": 250.0},
			want: DurationResult{
				Duration:   krd.OpenDuration(),
				Extensions: &krd.TCXStepExtensions{CaloriesBurned: krd.Float(250)},
			},
		},
		{
			name: "time without seconds",
			in:   bag.Bag{"durationType": "Time"},
			want: DurationResult{Duration: krd.OpenDuration()},
		},
		{
			name: "string bpm",
			in:   bag.Bag{"durationType": "HeartRateAbove", "bpm": "160"},
			want: DurationResult{Duration: krd.OpenDuration()},
		},
		{
			name: "unknown tag",
			in:   bag.Bag{"durationType": "Steps", "seconds": 10.0},
			want: DurationResult{Duration: krd.OpenDuration()},
		},
		{
			name: "empty",
			in:   bag.Bag{},
			want: DurationResult{Duration: krd.OpenDuration()},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConvertDuration(tc.in))
		})
	}
}

func TestDurationFields(t *testing.T) {
	got := durationFields(&Duration{
		Attrs:     typed("HeartRateBelow_t"),
		HeartRate: bpmMeasure(135),
	})
	assert.Equal(t, bag.Bag{"durationType": "HeartRateBelow", "bpm": 135.0}, got)

	got = durationFields(&Duration{Attrs: typed("UserInitiated_t")})
	assert.Equal(t, bag.Bag{"durationType": "LapButton"}, got)

	assert.Empty(t, durationFields(nil))
}
