package krd

// DurationType tags the active variant of a Duration.
type DurationType string

const (
	DurationTime                            DurationType = "time"
	DurationDistance                        DurationType = "distance"
	DurationCalories                        DurationType = "calories"
	DurationHeartRateLessThan               DurationType = "heart_rate_less_than"
	DurationPowerLessThan                   DurationType = "power_less_than"
	DurationPowerGreaterThan                DurationType = "power_greater_than"
	DurationOpen                            DurationType = "open"
	DurationRepeatUntilTime                 DurationType = "repeat_until_time"
	DurationRepeatUntilDistance             DurationType = "repeat_until_distance"
	DurationRepeatUntilCalories             DurationType = "repeat_until_calories"
	DurationRepeatUntilHeartRateLessThan    DurationType = "repeat_until_heart_rate_less_than"
	DurationRepeatUntilHeartRateGreaterThan DurationType = "repeat_until_heart_rate_greater_than"
	DurationRepeatUntilPowerLessThan        DurationType = "repeat_until_power_less_than"
	DurationRepeatUntilPowerGreaterThan     DurationType = "repeat_until_power_greater_than"
)

// Duration is a tagged union. Exactly one of the numeric fields matching
// Type is set; repeat_until_* variants also carry RepeatFrom.
type Duration struct {
	Type       DurationType `json:"type"`
	Seconds    *float64     `json:"seconds,omitempty"`
	Meters     *float64     `json:"meters,omitempty"`
	Calories   *float64     `json:"calories,omitempty"`
	BPM        *float64     `json:"bpm,omitempty"`
	Watts      *float64     `json:"watts,omitempty"`
	RepeatFrom *int         `json:"repeatFrom,omitempty"`
}

// durationField names the numeric payload each variant requires.
type durationField int

const (
	fieldNone durationField = iota
	fieldSeconds
	fieldMeters
	fieldCalories
	fieldBPM
	fieldWatts
)

type durationShape struct {
	field  durationField
	repeat bool
}

var durationShapes = map[DurationType]durationShape{
	DurationTime:                            {field: fieldSeconds},
	DurationDistance:                        {field: fieldMeters},
	DurationCalories:                        {field: fieldCalories},
	DurationHeartRateLessThan:               {field: fieldBPM},
	DurationPowerLessThan:                   {field: fieldWatts},
	DurationPowerGreaterThan:                {field: fieldWatts},
	DurationOpen:                            {field: fieldNone},
	DurationRepeatUntilTime:                 {field: fieldSeconds, repeat: true},
	DurationRepeatUntilDistance:             {field: fieldMeters, repeat: true},
	DurationRepeatUntilCalories:             {field: fieldCalories, repeat: true},
	DurationRepeatUntilHeartRateLessThan:    {field: fieldBPM, repeat: true},
	DurationRepeatUntilHeartRateGreaterThan: {field: fieldBPM, repeat: true},
	DurationRepeatUntilPowerLessThan:        {field: fieldWatts, repeat: true},
	DurationRepeatUntilPowerGreaterThan:     {field: fieldWatts, repeat: true},
}

// Known reports whether t is part of the Duration union.
func (t DurationType) Known() bool {
	_, ok := durationShapes[t]
	return ok
}

// IsRepeat reports whether t is one of the repeat_until_* variants.
func (t DurationType) IsRepeat() bool {
	return durationShapes[t].repeat
}

func TimeDuration(seconds float64) Duration {
	return Duration{Type: DurationTime, Seconds: Float(seconds)}
}

func DistanceDuration(meters float64) Duration {
	return Duration{Type: DurationDistance, Meters: Float(meters)}
}

func CaloriesDuration(calories float64) Duration {
	return Duration{Type: DurationCalories, Calories: Float(calories)}
}

func HeartRateLessThanDuration(bpm float64) Duration {
	return Duration{Type: DurationHeartRateLessThan, BPM: Float(bpm)}
}

func PowerLessThanDuration(watts float64) Duration {
	return Duration{Type: DurationPowerLessThan, Watts: Float(watts)}
}

func PowerGreaterThanDuration(watts float64) Duration {
	return Duration{Type: DurationPowerGreaterThan, Watts: Float(watts)}
}

func OpenDuration() Duration {
	return Duration{Type: DurationOpen}
}

// RepeatUntilDuration builds a repeat_until_* variant, placing value in the
// field the variant requires.
func RepeatUntilDuration(t DurationType, value float64, repeatFrom int) Duration {
	d := Duration{Type: t, RepeatFrom: Int(repeatFrom)}
	switch durationShapes[t].field {
	case fieldSeconds:
		d.Seconds = Float(value)
	case fieldMeters:
		d.Meters = Float(value)
	case fieldCalories:
		d.Calories = Float(value)
	case fieldBPM:
		d.BPM = Float(value)
	case fieldWatts:
		d.Watts = Float(value)
	}
	return d
}

// Value returns the numeric payload of the active variant.
func (d Duration) Value() (float64, bool) {
	var p *float64
	switch durationShapes[d.Type].field {
	case fieldSeconds:
		p = d.Seconds
	case fieldMeters:
		p = d.Meters
	case fieldCalories:
		p = d.Calories
	case fieldBPM:
		p = d.BPM
	case fieldWatts:
		p = d.Watts
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}
