package krd

// TargetType is the kind of intensity target a step carries.
type TargetType string

const (
	TargetPower     TargetType = "power"
	TargetHeartRate TargetType = "heart_rate"
	TargetPace      TargetType = "pace"
	TargetCadence   TargetType = "cadence"
	TargetOpen      TargetType = "open"
)

// Unit is the unit of a TargetValue.
type Unit string

const (
	UnitWatts      Unit = "watts"
	UnitPercentFTP Unit = "percent_ftp"
	UnitZone       Unit = "zone"
	UnitRange      Unit = "range"
	UnitBPM        Unit = "bpm"
	UnitMPS        Unit = "mps"
	UnitRPM        Unit = "rpm"
	UnitPercentMax Unit = "percent_max"
)

// Target is a tagged union over TargetType. Open targets carry no value.
type Target struct {
	Type  TargetType   `json:"type"`
	Value *TargetValue `json:"value,omitempty"`
}

// TargetValue is a union over Unit. Range values use Min and Max; every
// other unit uses Value. Min may exceed Max: ramps encode direction that way.
type TargetValue struct {
	Unit  Unit     `json:"unit"`
	Value *float64 `json:"value,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

func OpenTarget() Target {
	return Target{Type: TargetOpen}
}

// NewTarget builds a non-open target.
func NewTarget(t TargetType, v TargetValue) Target {
	return Target{Type: t, Value: &v}
}

func Single(unit Unit, value float64) TargetValue {
	return TargetValue{Unit: unit, Value: Float(value)}
}

func Range(min, max float64) TargetValue {
	return TargetValue{Unit: UnitRange, Min: Float(min), Max: Float(max)}
}

// Is reports whether the target has kind t and a value in unit u.
func (t Target) Is(kind TargetType, u Unit) bool {
	return t.Type == kind && t.Value != nil && t.Value.Unit == u
}

// IsRange reports whether the value is a fully populated range.
func (v *TargetValue) IsRange() bool {
	return v != nil && v.Unit == UnitRange && v.Min != nil && v.Max != nil
}

// Number returns the single value for non-range units.
func (v *TargetValue) Number() (float64, bool) {
	if v == nil || v.Value == nil {
		return 0, false
	}
	return *v.Value, true
}
