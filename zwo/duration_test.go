package zwo

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/kaiord/internal/bag"
	"github.com/lucasjlepore/kaiord/krd"
)

func TestEncodeDuration(t *testing.T) {
	assert.Equal(t, bag.Bag{"Duration": 300.0}, EncodeDuration(krd.TimeDuration(300), nil))
	assert.Equal(t, bag.Bag{"Duration": 0.0}, EncodeDuration(krd.OpenDuration(), nil))
}

func TestEncodeDistanceIsLossy(t *testing.T) {
	logger, hook := test.NewNullLogger()

	got := EncodeDuration(krd.DistanceDuration(1000), logger)
	assert.Equal(t, bag.Bag{
		"Duration":                      1000.0,
		"kaiord:originalDurationType":   "distance",
		"kaiord:originalDurationMeters": 1000.0,
	}, got)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestEncodeConditionalFallsBack(t *testing.T) {
	logger, hook := test.NewNullLogger()

	got := EncodeDuration(krd.HeartRateLessThanDuration(140), logger)
	assert.Equal(t, bag.Bag{
		"Duration":                    300.0,
		"kaiord:originalDurationType": "heart_rate_less_than",
		"kaiord:originalDurationBpm":  140.0,
	}, got)
	assert.Equal(t, bag.Bag{
		"Duration":                     300.0,
		"kaiord:originalDurationType":  "power_greater_than",
		"kaiord:originalDurationWatts": 280.0,
	}, EncodeDuration(krd.PowerGreaterThanDuration(280), logger))

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, krd.DurationHeartRateLessThan, hook.Entries[0].Data["duration_type"])
}

func TestRestoreKaiordDuration(t *testing.T) {
	encoded := EncodeDuration(krd.HeartRateLessThanDuration(140), nil)
	restored := RestoreKaiordDuration(encoded, nil)
	require.NotNil(t, restored)
	assert.Equal(t, krd.HeartRateLessThanDuration(140), *restored)

	cases := []struct {
		name string
		in   bag.Bag
	}{
		{name: "no type", in: bag.Bag{"Duration": 300.0}},
		{name: "unknown type", in: bag.Bag{"kaiord:originalDurationType": "steps", "kaiord:originalDurationBpm": 140.0}},
		{name: "string bpm", in: bag.Bag{"kaiord:originalDurationType": "heart_rate_less_than", "kaiord:originalDurationBpm": "140"}},
		{name: "missing watts", in: bag.Bag{"kaiord:originalDurationType": "power_less_than"}},
	}
	for _, tc := range cases {
		assert.Nil(t, RestoreKaiordDuration(tc.in, nil), tc.name)
	}
}

func TestReadDurationPrefersRestoration(t *testing.T) {
	b := bag.Bag{
		"Duration":                        300.0,
		"kaiord:originalDurationType":     "calories",
		"kaiord:originalDurationCalories": 200.0,
	}
	assert.Equal(t, krd.CaloriesDuration(200), readDuration(b, attrDuration, nil))
	assert.Equal(t, krd.TimeDuration(45), readDuration(bag.Bag{"Duration": 45.0}, attrDuration, nil))
	assert.Equal(t, krd.OpenDuration(), readDuration(bag.Bag{"Duration": 0.0}, attrDuration, nil))
}
