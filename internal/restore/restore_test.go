package restore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/krd"
)

func TestDurationRoundTrip(t *testing.T) {
	cases := []krd.Duration{
		krd.HeartRateLessThanDuration(140),
		krd.PowerLessThanDuration(180),
		krd.PowerGreaterThanDuration(300),
		krd.CaloriesDuration(250),
		krd.DistanceDuration(1000),
		krd.RepeatUntilDuration(krd.DurationRepeatUntilHeartRateGreaterThan, 150, 0),
		krd.RepeatUntilDuration(krd.DurationRepeatUntilTime, 1200, 2),
	}
	for _, prefix := range []string{ZwiftPrefix, TCXPrefix} {
		c := Codec{Prefix: prefix}
		for _, d := range cases {
			attrs := c.EncodeDuration(d)
			require.NotNil(t, attrs, "%s %s", prefix, d.Type)
			got := c.DecodeDuration(attrs)
			require.NotNil(t, got, "%s %s", prefix, d.Type)
			assert.Equal(t, d, *got)
		}
	}
}

func TestEncodeDurationUsesPrefixedNames(t *testing.T) {
	attrs := Codec{Prefix: TCXPrefix}.EncodeDuration(krd.HeartRateLessThanDuration(140))
	assert.Equal(t, bag.Bag{
		"@_kaiord:originalDurationType": "heart_rate_less_than",
		"@_kaiord:originalDurationBpm":  140.0,
	}, attrs)
}

func TestEncodeDurationSkipsNonRestorable(t *testing.T) {
	c := Codec{Prefix: ZwiftPrefix}
	assert.Nil(t, c.EncodeDuration(krd.TimeDuration(60)))
	assert.Nil(t, c.EncodeDuration(krd.OpenDuration()))
	assert.Nil(t, c.EncodeDuration(krd.Duration{Type: krd.DurationPowerLessThan}))
}

func TestDecodeDurationRejectsBadInput(t *testing.T) {
	c := Codec{Prefix: ZwiftPrefix}
	cases := map[string]bag.Bag{
		"absent":        {},
		"unknown type":  {"kaiord:originalDurationType": "time", "kaiord:originalDurationSeconds": 60.0},
		"string bpm":    {"kaiord:originalDurationType": "heart_rate_less_than", "kaiord:originalDurationBpm": "140"},
		"missing bpm":   {"kaiord:originalDurationType": "heart_rate_less_than"},
		"wrong field":   {"kaiord:originalDurationType": "power_less_than", "kaiord:originalDurationBpm": 140.0},
		"no repeatFrom": {"kaiord:originalDurationType": "repeat_until_time", "kaiord:originalDurationSeconds": 60.0},
		"wrong prefix":  {"@_kaiord:originalDurationType": "calories", "@_kaiord:originalDurationCalories": 10.0},
	}
	for name, b := range cases {
		assert.Nil(t, c.DecodeDuration(b), name)
	}
}

func TestTargetRoundTrip(t *testing.T) {
	c := Codec{Prefix: TCXPrefix}
	for _, tgt := range []krd.Target{
		krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitWatts, 250)),
		krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, 95)),
		krd.NewTarget(krd.TargetPower, krd.Range(80, 60)),
		krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitBPM, 150)),
		krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 90)),
	} {
		got := c.DecodeTarget(c.EncodeTarget(tgt))
		require.NotNil(t, got)
		assert.Equal(t, tgt, *got)
	}
	assert.Nil(t, c.EncodeTarget(krd.OpenTarget()))
	assert.Nil(t, c.EncodeTarget(krd.Target{Type: krd.TargetPower}))
	assert.Nil(t, c.DecodeTarget(bag.Bag{"@_kaiord:originalTargetType": "open", "@_kaiord:originalTargetUnit": "watts", "@_kaiord:originalTargetValue": 1.0}))
	assert.Nil(t, c.DecodeTarget(bag.Bag{"@_kaiord:originalTargetType": "power", "@_kaiord:originalTargetUnit": "range", "@_kaiord:originalTargetMin": 1.0}))
}
