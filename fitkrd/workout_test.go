package fitkrd

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/krd"
)

var created = time.Date(2025, 3, 14, 6, 30, 0, 0, time.UTC)

func thresholdWorkout() krd.Workout {
	warm := krd.NewStep(0, krd.TimeDuration(600), krd.NewTarget(krd.TargetPower, krd.Range(50, 75)))
	warm.Name = "Warm up"
	warm.Intensity = krd.IntensityWarmup

	on := krd.NewStep(1, krd.TimeDuration(60), krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitWatts, 300)))
	on.Intensity = krd.IntensityActive
	off := krd.NewStep(2, krd.DistanceDuration(400), krd.NewTarget(krd.TargetHeartRate, krd.Range(120, 140)))
	off.Intensity = krd.IntensityRest
	off.Notes = "easy spin"

	// Message 3 is the repeat step of the block.
	untilHR := krd.NewStep(4, krd.RepeatUntilDuration(krd.DurationRepeatUntilHeartRateGreaterThan, 150, 0), krd.OpenTarget())
	spin := krd.NewStep(5, krd.OpenDuration(), krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 90)))
	tempo := krd.NewStep(6, krd.TimeDuration(300), krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitMPS, 3.5)))
	easy := krd.NewStep(7, krd.HeartRateLessThanDuration(130), krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitZone, 2)))
	burn := krd.NewStep(8, krd.CaloriesDuration(50), krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, 85)))
	burn.Intensity = krd.IntensityCooldown

	return krd.Workout{
		Name:  "Threshold",
		Sport: krd.SportCycling,
		Steps: []krd.WorkoutItem{
			krd.StepItem(warm),
			krd.BlockItem(krd.RepetitionBlock{RepeatCount: 5, Steps: []krd.WorkoutStep{on, off}}),
			krd.StepItem(untilHR),
			krd.StepItem(spin),
			krd.StepItem(tempo),
			krd.StepItem(easy),
			krd.StepItem(burn),
		},
	}
}

func TestWorkoutRoundTrip(t *testing.T) {
	in := krd.NewWorkoutKRD(krd.Metadata{Created: created}, thresholdWorkout())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in, Options{}))

	out, err := Read(bytes.NewReader(buf.Bytes()), Options{})
	require.NoError(t, err)
	require.NoError(t, krd.Validate(out))

	assert.Equal(t, krd.TypeWorkout, out.Type)
	assert.True(t, created.Equal(out.Metadata.Created), "created %v", out.Metadata.Created)
	assert.Equal(t, krd.SportCycling, out.Metadata.Sport)
	assert.Equal(t, *in.Workout(), *out.Workout())
}

func TestWritePlacesRepeatStepAfterBlock(t *testing.T) {
	msgs := MessagesFromSteps(thresholdWorkout().Steps, logrus.New())
	require.Len(t, msgs, 9)

	repeat := msgs[3]
	assert.Equal(t, fit.WktStepDurationRepeatUntilStepsCmplt, repeat.DurationType)
	assert.Equal(t, uint32(1), repeat.DurationValue)
	assert.Equal(t, uint32(5), repeat.TargetValue)

	untilHR := msgs[4]
	assert.Equal(t, fit.WktStepDurationRepeatUntilHrGreaterThan, untilHR.DurationType)
	assert.Equal(t, uint32(0), untilHR.DurationValue)
	assert.Equal(t, uint32(250), untilHR.TargetValue)
}

func stepMsgFor(typ fit.WktStepDuration, value uint32) *fit.WorkoutStepMsg {
	m := fit.NewWorkoutStepMsg()
	m.DurationType = typ
	m.DurationValue = value
	m.TargetType = fit.WktStepTargetOpen
	m.TargetValue = 0
	return m
}

func TestStepsFromMessagesFoldsRepeats(t *testing.T) {
	repeat := stepMsgFor(fit.WktStepDurationRepeatUntilStepsCmplt, 1)
	repeat.TargetValue = 4
	msgs := []*fit.WorkoutStepMsg{
		stepMsgFor(fit.WktStepDurationTime, 600000),
		stepMsgFor(fit.WktStepDurationTime, 30000),
		stepMsgFor(fit.WktStepDurationTime, 90000),
		repeat,
		stepMsgFor(fit.WktStepDurationOpen, 0),
	}

	items := StepsFromMessages(msgs, logrus.New())
	require.Len(t, items, 3)
	require.NotNil(t, items[0].Step)
	require.NotNil(t, items[1].Block)
	require.NotNil(t, items[2].Step)

	block := items[1].Block
	assert.Equal(t, 4, block.RepeatCount)
	require.Len(t, block.Steps, 2)
	assert.Equal(t, 1, block.Steps[0].StepIndex)
	assert.Equal(t, krd.TimeDuration(30), block.Steps[0].Duration)
	assert.Equal(t, 2, block.Steps[1].StepIndex)
	assert.Equal(t, 4, items[2].Step.StepIndex)
	assert.Equal(t, krd.DurationOpen, items[2].Step.DurationType)
}

func TestStepsFromMessagesDropsEmptyRepeat(t *testing.T) {
	log, hook := test.NewNullLogger()
	repeat := stepMsgFor(fit.WktStepDurationRepeatUntilStepsCmplt, 5)
	repeat.TargetValue = 2

	items := StepsFromMessages([]*fit.WorkoutStepMsg{stepMsgFor(fit.WktStepDurationTime, 1000), repeat}, log)
	require.Len(t, items, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestUnrepresentableDurationIsKeptInExtensions(t *testing.T) {
	log, hook := test.NewNullLogger()
	m := stepMsgFor(fit.WktStepDurationHrGreaterThan, 260)

	items := StepsFromMessages([]*fit.WorkoutStepMsg{m}, log)
	require.Len(t, items, 1)
	s := items[0].Step
	assert.Equal(t, krd.OpenDuration(), s.Duration)
	require.NotNil(t, s.FIT())
	assert.Equal(t, "hr_greater_than", s.FIT().DurationType)
	assert.Equal(t, 260.0, *s.FIT().DurationValue)
	assert.Len(t, hook.Entries, 1)

	back := MessagesFromSteps(items, log)
	require.Len(t, back, 1)
	assert.Equal(t, fit.WktStepDurationHrGreaterThan, back[0].DurationType)
	assert.Equal(t, uint32(260), back[0].DurationValue)
}

func TestWattsRangeKeepsItsUnit(t *testing.T) {
	m := stepMsgFor(fit.WktStepDurationTime, 60000)
	m.TargetType = fit.WktStepTargetPower
	m.TargetValue = 0
	m.CustomTargetValueLow = 1200
	m.CustomTargetValueHigh = 1250

	items := StepsFromMessages([]*fit.WorkoutStepMsg{m}, logrus.New())
	s := items[0].Step
	assert.Equal(t, krd.NewTarget(krd.TargetPower, krd.Range(200, 250)), s.Target)
	require.NotNil(t, s.FIT())
	assert.Equal(t, krd.UnitWatts, s.FIT().RangeUnit)

	back := MessagesFromSteps(items, logrus.New())
	assert.Equal(t, uint32(1200), back[0].CustomTargetValueLow)
	assert.Equal(t, uint32(1250), back[0].CustomTargetValueHigh)
}

func TestPoolLengthInYards(t *testing.T) {
	w := krd.Workout{
		Name:           "Pool",
		Sport:          krd.SportSwimming,
		PoolLength:     krd.Float(25),
		PoolLengthUnit: "yards",
		Steps: []krd.WorkoutItem{
			krd.StepItem(krd.NewStep(0, krd.DistanceDuration(100), krd.OpenTarget())),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, krd.NewWorkoutKRD(krd.Metadata{Created: created}, w), Options{}))

	out, err := Read(&buf, Options{})
	require.NoError(t, err)
	got := out.Workout()
	require.NotNil(t, got.PoolLength)
	assert.InDelta(t, 25, *got.PoolLength, 0.01)
	assert.Equal(t, "yards", got.PoolLengthUnit)
	assert.Equal(t, krd.SportSwimming, got.Sport)
}

func TestReadRejectsOtherFileTypes(t *testing.T) {
	file, err := fit.NewFile(fit.FileTypeCourse, fit.NewHeader(fit.V20, true))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))

	_, err = Read(&buf, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestWriteRequiresWorkout(t *testing.T) {
	err := Write(&bytes.Buffer{}, &krd.KRD{Version: krd.Version, Type: krd.TypeActivity}, Options{})
	assert.Error(t, err)
}
