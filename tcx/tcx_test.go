package tcx

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/kaiord/krd"
)

var created = time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

func fixedOptions() Options {
	return Options{Now: func() time.Time { return created }}
}

func step(index int, d krd.Duration, t krd.Target, intensity krd.Intensity) krd.WorkoutStep {
	s := krd.NewStep(index, d, t)
	s.Intensity = intensity
	return s
}

func tempoWorkout() krd.Workout {
	on := step(1, krd.TimeDuration(60), krd.NewTarget(krd.TargetPower, krd.Single(krd.UnitPercentFTP, 110)), krd.IntensityActive)
	on.Name = "On"
	off := step(2, krd.DistanceDuration(400), krd.NewTarget(krd.TargetPace, krd.Range(3, 3.5)), krd.IntensityRest)

	above := step(4, krd.OpenDuration(), krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitZone, 4)), krd.IntensityActive)
	above.EnsureExtensions().TCX = &krd.TCXStepExtensions{HeartRateAbove: krd.Float(170)}

	return krd.Workout{
		Name:  "Tempo",
		Sport: krd.SportCycling,
		Steps: []krd.WorkoutItem{
			krd.StepItem(step(0, krd.TimeDuration(600), krd.NewTarget(krd.TargetHeartRate, krd.Range(120, 140)), krd.IntensityWarmup)),
			krd.BlockItem(krd.RepetitionBlock{RepeatCount: 3, Steps: []krd.WorkoutStep{on, off}}),
			krd.StepItem(step(3, krd.HeartRateLessThanDuration(130), krd.NewTarget(krd.TargetCadence, krd.Single(krd.UnitRPM, 90)), krd.IntensityActive)),
			krd.StepItem(above),
			krd.StepItem(step(5, krd.PowerGreaterThanDuration(300), krd.OpenTarget(), krd.IntensityCooldown)),
			krd.StepItem(step(6, krd.RepeatUntilDuration(krd.DurationRepeatUntilTime, 1200, 1), krd.NewTarget(krd.TargetHeartRate, krd.Single(krd.UnitPercentMax, 85)), krd.IntensityActive)),
		},
	}
}

func TestWorkoutRoundTrip(t *testing.T) {
	src := krd.NewWorkoutKRD(krd.Metadata{Created: created}, tempoWorkout())
	require.NoError(t, krd.Validate(src))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, fixedOptions()))

	got, err := Read(&buf, fixedOptions())
	require.NoError(t, err)
	require.NoError(t, krd.Validate(got))

	assert.Equal(t, krd.TypeWorkout, got.Type)
	assert.Equal(t, created, got.Metadata.Created)
	assert.Equal(t, krd.SportCycling, got.Metadata.Sport)
	assert.Equal(t, *src.Workout(), *got.Workout())
}

func TestWriteWorkoutDocument(t *testing.T) {
	src := krd.NewWorkoutKRD(krd.Metadata{Created: created}, tempoWorkout())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, fixedOptions()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `xmlns:kaiord="https://kaiord.dev/ns/1"`)
	assert.Contains(t, out, `<Workout Sport="Biking">`)
	assert.Contains(t, out, `xsi:type="Repeat_t"`)
	assert.Contains(t, out, `<Repetitions>3</Repetitions>`)
	assert.Contains(t, out, `kaiord:originalDurationType="heart_rate_less_than"`)
	assert.Contains(t, out, `kaiord:originalDurationBpm="130"`)
	assert.Contains(t, out, `kaiord:originalTargetType="power"`)
	assert.Contains(t, out, `kaiord:originalIntensity="warmup"`)
	assert.Contains(t, out, `<Duration xsi:type="HeartRateAbove_t">`)
	assert.NotContains(t, out, "@_kaiord")
}

func TestWriteLogsLossyDuration(t *testing.T) {
	logger, hook := test.NewNullLogger()
	src := krd.NewWorkoutKRD(krd.Metadata{Created: created}, krd.Workout{
		Sport: krd.SportRunning,
		Steps: []krd.WorkoutItem{
			krd.StepItem(step(0, krd.PowerLessThanDuration(150), krd.OpenTarget(), krd.IntensityActive)),
		},
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, Options{Logger: logger}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "tcx", entry.Data["format"])
	assert.Equal(t, krd.DurationPowerLessThan, entry.Data["duration_type"])
	assert.Contains(t, buf.String(), `<Duration xsi:type="UserInitiated_t">`)
}

func TestWriteRejectsHeartRateZoneWithoutValue(t *testing.T) {
	bad := krd.NewStep(0, krd.TimeDuration(60), krd.Target{
		Type:  krd.TargetHeartRate,
		Value: &krd.TargetValue{Unit: krd.UnitZone},
	})
	src := krd.NewWorkoutKRD(krd.Metadata{Created: created}, krd.Workout{
		Sport: krd.SportRunning,
		Steps: []krd.WorkoutItem{krd.StepItem(bad)},
	})

	err := Write(&bytes.Buffer{}, src, fixedOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zone unit requires value to be defined")
}

const garminWorkout = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <Workouts>
    <Workout Sport="Running">
      <Name>Hills</Name>
      <Step xsi:type="Step_t">
        <StepId>1</StepId>
        <Duration xsi:type="HeartRateAbove_t">
          <HeartRate xsi:type="HeartRateInBeatsPerMinute_t"><Value>160</Value></HeartRate>
        </Duration>
        <Intensity>Active</Intensity>
        <Target xsi:type="Speed_t">
          <SpeedZone xsi:type="PredefinedSpeedZone_t"><Number>3</Number></SpeedZone>
        </Target>
      </Step>
      <Step xsi:type="Repeat_t">
        <StepId>5</StepId>
        <Repetitions>2</Repetitions>
        <Child xsi:type="Step_t">
          <StepId>2</StepId>
          <Duration xsi:type="Time_t"><Seconds>90</Seconds></Duration>
          <Intensity>Active</Intensity>
          <Target xsi:type="Cadence_t"><Low>85</Low><High>90</High></Target>
        </Child>
        <Child xsi:type="Repeat_t">
          <StepId>4</StepId>
          <Repetitions>2</Repetitions>
          <Child xsi:type="Step_t">
            <StepId>3</StepId>
            <Duration xsi:type="UserInitiated_t"/>
            <Intensity>Resting</Intensity>
            <Target xsi:type="None_t"/>
          </Child>
        </Child>
      </Step>
    </Workout>
  </Workouts>
</TrainingCenterDatabase>`

func TestReadGarminWorkout(t *testing.T) {
	logger, hook := test.NewNullLogger()
	got, err := Read(strings.NewReader(garminWorkout), Options{Logger: logger, Now: func() time.Time { return created }})
	require.NoError(t, err)

	w := got.Workout()
	require.NotNil(t, w)
	assert.Equal(t, "Hills", w.Name)
	assert.Equal(t, krd.SportRunning, w.Sport)
	require.Len(t, w.Steps, 2)

	first := w.Steps[0].Step
	require.NotNil(t, first)
	assert.Equal(t, krd.OpenDuration(), first.Duration)
	require.NotNil(t, first.TCX())
	assert.Equal(t, 160.0, *first.TCX().HeartRateAbove)
	assert.Equal(t, krd.NewTarget(krd.TargetPace, krd.Single(krd.UnitZone, 3)), first.Target)

	block := w.Steps[1].Block
	require.NotNil(t, block)
	assert.Equal(t, 2, block.RepeatCount)
	require.Len(t, block.Steps, 2)
	assert.Equal(t, 1, block.Steps[0].StepIndex)
	assert.Equal(t, krd.TimeDuration(90), block.Steps[0].Duration)
	assert.Equal(t, krd.NewTarget(krd.TargetCadence, krd.Range(85, 90)), block.Steps[0].Target)
	assert.Equal(t, 2, block.Steps[1].StepIndex)
	assert.Equal(t, krd.IntensityRest, block.Steps[1].Intensity)
	assert.Equal(t, krd.OpenTarget(), block.Steps[1].Target)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "nested repeat flattened", hook.LastEntry().Message)
}

func TestReadRejectsEmptyDocument(t *testing.T) {
	_, err := Read(strings.NewReader(`<TrainingCenterDatabase/>`), fixedOptions())
	assert.True(t, errors.Is(err, ErrNoContent))

	_, err = Read(strings.NewReader(`<TrainingCenterDatabase>`), fixedOptions())
	assert.Error(t, err)
}

func TestWriteRejectsCourse(t *testing.T) {
	err := Write(&bytes.Buffer{}, &krd.KRD{Version: krd.Version, Type: krd.TypeCourse}, fixedOptions())
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestActivityRoundTrip(t *testing.T) {
	t0 := created
	src := &krd.KRD{
		Version:  krd.Version,
		Type:     krd.TypeActivity,
		Metadata: krd.Metadata{Created: t0, Sport: krd.SportRunning},
		Laps: []krd.Lap{
			{StartTime: t0, TotalElapsedTime: 60, TotalDistance: krd.Float(200), AvgHeartRate: krd.Float(140), MaxHeartRate: krd.Float(150), TotalCalories: krd.Float(12)},
			{StartTime: t0.Add(time.Minute), TotalElapsedTime: 30, TotalDistance: krd.Float(100), MaxHeartRate: krd.Float(162)},
		},
		Records: []krd.Record{
			{Timestamp: t0.Add(time.Minute), HeartRate: krd.Float(160), Speed: krd.Float(3.4)},
			{Timestamp: t0, Position: &krd.Position{Lat: 45.5, Lon: -73.6}, HeartRate: krd.Float(130), Altitude: krd.Float(35.2), Distance: krd.Float(0)},
			{Timestamp: t0.Add(30 * time.Second), HeartRate: krd.Float(145), Cadence: krd.Float(88), Power: krd.Float(250)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, fixedOptions()))
	assert.Contains(t, buf.String(), "<Watts>250</Watts>")

	got, err := Read(&buf, fixedOptions())
	require.NoError(t, err)

	assert.Equal(t, krd.TypeActivity, got.Type)
	assert.Equal(t, t0, got.Metadata.Created)
	assert.Equal(t, krd.SportRunning, got.Metadata.Sport)
	assert.Equal(t, src.Laps, got.Laps)

	require.Len(t, got.Records, 3)
	assert.Equal(t, src.Records[1], got.Records[0])
	assert.Equal(t, src.Records[2], got.Records[1])
	assert.Equal(t, src.Records[0], got.Records[2])

	require.Len(t, got.Sessions, 1)
	s := got.Sessions[0]
	assert.Equal(t, t0, s.StartTime)
	assert.Equal(t, 90.0, s.TotalElapsedTime)
	assert.Equal(t, 300.0, *s.TotalDistance)
	assert.Equal(t, 162.0, *s.MaxHeartRate)
	assert.Equal(t, 12.0, *s.TotalCalories)
}

func TestReadActivityDropsInvalidPosition(t *testing.T) {
	doc := `<TrainingCenterDatabase><Activities><Activity Sport="Biking"><Id>2025-03-14T07:00:00Z</Id>
<Lap StartTime="2025-03-14T07:00:00Z"><TotalTimeSeconds>10</TotalTimeSeconds><Track>
<Trackpoint><Time>2025-03-14T07:00:05Z</Time><Position><LatitudeDegrees>95</LatitudeDegrees><LongitudeDegrees>10</LongitudeDegrees></Position></Trackpoint>
<Trackpoint><Time>not a time</Time></Trackpoint>
</Track></Lap></Activity></Activities></TrainingCenterDatabase>`

	got, err := Read(strings.NewReader(doc), fixedOptions())
	require.NoError(t, err)
	assert.Equal(t, krd.SportCycling, got.Metadata.Sport)
	require.Len(t, got.Records, 1)
	assert.Nil(t, got.Records[0].Position)
}
