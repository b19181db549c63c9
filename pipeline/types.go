package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasjlepore/kaiord/krd"
)

// Options configures the export pipeline.
type Options struct {
	InputPath string
	OutDir    string
	Format    string // parquet|csv
	Overwrite bool
	// FTPWatts overrides the FTP estimated from the best 20 minutes.
	FTPWatts float64
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

// BytesOptions configures an in-memory run.
type BytesOptions struct {
	SourceFileName string
	Data           []byte
	Format         string // parquet|csv
	FTPWatts       float64
	Logger         logrus.FieldLogger
	Now            func() time.Time
}

// Result returns generated output paths.
type Result struct {
	OutputDir   string   `json:"output_dir"`
	KRDPath     string   `json:"krd_path"`
	TablePath   string   `json:"table_path"`
	SummaryPath string   `json:"summary_path"`
	Warnings    []string `json:"warnings,omitempty"`
}

// BytesResult holds every artefact keyed by file name.
type BytesResult struct {
	Files    map[string][]byte
	Summary  Summary
	Warnings []string
}

// Summary is written to summary.json.
type Summary struct {
	SourceFile   string       `json:"source_file"`
	SourceFormat string       `json:"source_format"`
	Type         krd.FileType `json:"type"`
	Sport        krd.Sport    `json:"sport"`
	GeneratedAt  time.Time    `json:"generated_at"`

	RecordCount  int      `json:"record_count"`
	StepCount    int      `json:"step_count,omitempty"`
	UntimedSteps int      `json:"untimed_steps,omitempty"`
	DurationS    float64  `json:"duration_s"`
	DistanceM    *float64 `json:"distance_m,omitempty"`

	AvgPowerW     float64 `json:"avg_power_w"`
	NPW           float64 `json:"np_w"`
	MaxPowerW     float64 `json:"max_power_w"`
	AvgHRBPM      float64 `json:"avg_hr_bpm"`
	MaxHRBPM      float64 `json:"max_hr_bpm"`
	AvgCadenceRPM float64 `json:"avg_cadence_rpm"`
	MaxCadenceRPM float64 `json:"max_cadence_rpm"`
	AvgSpeedMPS   float64 `json:"avg_speed_mps"`
	TotalWorkKJ   float64 `json:"total_work_kj"`
	Best20MinW    float64 `json:"best_20min_power_w"`
	DecouplingPct float64 `json:"power_hr_decoupling_pct"`

	FTPWUsed   *float64       `json:"ftp_w_used,omitempty"`
	FTPSource  string         `json:"ftp_source,omitempty"`
	IF         *float64       `json:"if,omitempty"`
	TSSLike    *float64       `json:"tss_like,omitempty"`
	PowerZones []ZoneDuration `json:"power_zones,omitempty"`

	LossyWarningCount int      `json:"lossy_warning_count"`
	Warnings          []string `json:"warnings,omitempty"`
}

// ZoneDuration stores time spent in one FTP-based power zone.
type ZoneDuration struct {
	Zone       string  `json:"zone"`
	MinPctFTP  float64 `json:"min_pct_ftp"`
	MaxPctFTP  float64 `json:"max_pct_ftp"`
	Seconds    float64 `json:"seconds"`
	Percentage float64 `json:"percentage"`
}

// RecordRow is one activity record in the records table.
type RecordRow struct {
	TSUTCISO    string
	ElapsedS    float64
	PowerW      *float64
	HRBPM       *float64
	CadenceRPM  *float64
	SpeedMPS    *float64
	DistanceM   *float64
	AltitudeM   *float64
	LatDeg      *float64
	LonDeg      *float64
	RecordIndex int
}

// StepRow is one workout step in the steps table, in execution order.
type StepRow struct {
	Position      int
	BlockIndex    int // -1 outside repetition blocks
	RepeatCount   int
	StepIndex     int
	Name          string
	Intensity     string
	DurationType  string
	DurationValue *float64
	TargetType    string
	TargetUnit    string
	TargetValue   *float64
	TargetMin     *float64
	TargetMax     *float64
}
