package fitkrd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/krd"
)

func TestConvertCadenceTargetPriority(t *testing.T) {
	cases := []struct {
		name string
		in   StepFields
		want krd.Target
	}{
		{
			name: "specific beats generic",
			in: StepFields{
				CustomTargetCadenceLow: num(85), CustomTargetCadenceHigh: num(95),
				CustomTargetValueLow: num(60), CustomTargetValueHigh: num(70),
			},
			want: krd.NewTarget(krd.TargetCadence, krd.Range(85, 95)),
		},
		{
			name: "generic range",
			in:   StepFields{CustomTargetValueLow: num(60), CustomTargetValueHigh: num(70), TargetCadenceZone: num(3)},
			want: krd.NewTarget(krd.TargetCadence, krd.Range(60, 70)),
		},
		{
			name: "lone low falls through to zone",
			in:   StepFields{CustomTargetCadenceLow: num(85), TargetCadenceZone: num(3), TargetValue: num(90)},
			want: krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 3)),
		},
		{
			name: "value",
			in:   StepFields{TargetValue: num(90)},
			want: krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 90)),
		},
		{
			name: "nothing",
			in:   StepFields{},
			want: krd.OpenTarget(),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConvertCadenceTarget(tc.in))
		})
	}
}

func TestConvertPaceTarget(t *testing.T) {
	assert.Equal(t,
		krd.NewTarget(krd.TargetPace, krd.Range(3, 3.5)),
		ConvertPaceTarget(StepFields{CustomTargetSpeedLow: num(3), CustomTargetSpeedHigh: num(3.5), TargetSpeedZone: num(2)}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetPace, krd.Range(3, 3.5)),
		ConvertPaceTarget(StepFields{CustomTargetValueLow: num(3000), CustomTargetValueHigh: num(3500)}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitZone, 2)),
		ConvertPaceTarget(StepFields{TargetSpeedZone: num(2), TargetValue: num(3500)}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitMPS, 3.5)),
		ConvertPaceTarget(StepFields{TargetValue: num(3500)}))
	assert.Equal(t, krd.OpenTarget(), ConvertPaceTarget(StepFields{CustomTargetSpeedHigh: num(3)}))
}

func TestConvertPowerTarget(t *testing.T) {
	cases := []struct {
		name string
		in   StepFields
		want krd.Target
	}{
		{name: "watts range", in: StepFields{CustomTargetPowerLow: num(1200), CustomTargetPowerHigh: num(1250)}, want: krd.NewTarget(krd.TargetPower, krd.Range(200, 250))},
		{name: "percent range", in: StepFields{CustomTargetPowerLow: num(90), CustomTargetPowerHigh: num(105)}, want: krd.NewTarget(krd.TargetPower, krd.Range(90, 105))},
		{name: "zone", in: StepFields{TargetPowerZone: num(4), TargetValue: num(1300)}, want: krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitZone, 4))},
		{name: "watts", in: StepFields{TargetValue: num(1300)}, want: krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitWatts, 300))},
		{name: "percent", in: StepFields{TargetValue: num(85)}, want: krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, 85))},
		{name: "open", in: StepFields{}, want: krd.OpenTarget()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConvertPowerTarget(tc.in))
		})
	}
}

func TestConvertHeartRateTarget(t *testing.T) {
	assert.Equal(t,
		krd.NewTarget(krd.TargetHeartRate, krd.Range(120, 140)),
		ConvertHeartRateTarget(StepFields{CustomTargetHeartRateLow: num(220), CustomTargetHeartRateHigh: num(240)}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitZone, 3)),
		ConvertHeartRateTarget(StepFields{TargetHRZone: num(3)}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitBPM, 150)),
		ConvertHeartRateTarget(StepFields{TargetValue: num(250)}))
	assert.Equal(t,
		krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitPercentMax, 80)),
		ConvertHeartRateTarget(StepFields{TargetValue: num(80)}))
}

func TestConvertTargetDispatch(t *testing.T) {
	f := StepFields{TargetType: fit.WktStepTargetPower, TargetPowerZone: num(2)}
	assert.Equal(t, krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitZone, 2)), ConvertTarget(f))

	f.TargetType = fit.WktStepTargetGrade
	assert.Equal(t, krd.OpenTarget(), ConvertTarget(f))
}

func TestEncodeTargetInvertsResolvers(t *testing.T) {
	cases := []struct {
		name    string
		target  krd.Target
		rangeAs krd.Unit
	}{
		{name: "percent range", target: krd.NewTarget(krd.TargetPower, krd.Range(50, 75))},
		{name: "watts range", target: krd.NewTarget(krd.TargetPower, krd.Range(200, 250)), rangeAs: krd.UnitWatts},
		{name: "watts", target: krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitWatts, 300))},
		{name: "power zone", target: krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitZone, 3))},
		{name: "bpm range", target: krd.NewTarget(krd.TargetHeartRate, krd.Range(120, 140))},
		{name: "percent max range", target: krd.NewTarget(krd.TargetHeartRate, krd.Range(60, 70)), rangeAs: krd.UnitPercentMax},
		{name: "bpm", target: krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitBPM, 155))},
		{name: "mps", target: krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitMPS, 3.5))},
		{name: "pace range", target: krd.NewTarget(krd.TargetPace, krd.Range(3.2, 3.6))},
		{name: "rpm", target: krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 90))},
		{name: "open", target: krd.OpenTarget()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tm, ok := encodeTarget(tc.target, tc.rangeAs)
			assert.True(t, ok)

			m := fit.NewWorkoutStepMsg()
			m.DurationType = fit.WktStepDurationOpen
			m.TargetType = tm.Type
			m.TargetValue = tm.Value
			m.CustomTargetValueLow = tm.Low
			m.CustomTargetValueHigh = tm.High

			f := FieldsFromMsg(m)
			got := ConvertTarget(f)
			if tc.target.Value != nil && tc.target.Value.IsRange() {
				assert.InDelta(t, *tc.target.Value.Min, *got.Value.Min, 1e-9)
				assert.InDelta(t, *tc.target.Value.Max, *got.Value.Max, 1e-9)
				assert.Equal(t, tc.rangeAs, rangeUnit(f, got))
				return
			}
			assert.Equal(t, tc.target, got)
		})
	}
}

func TestEncodeTargetRejectsMismatchedUnit(t *testing.T) {
	tm, ok := encodeTarget(krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitBPM, 150)), "")
	assert.False(t, ok)
	assert.Equal(t, fit.WktStepTargetOpen, tm.Type)
}
