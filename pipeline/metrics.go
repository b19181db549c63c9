package pipeline

import (
	"math"

	"github.com/lucasjlepore/kaiord/krd"
)

const (
	npWindowSeconds  = 30
	best20Seconds    = 20 * 60
	ftpFromBest20    = 0.95
	maxRecordGapSecs = 5.0
)

var powerZoneBounds = []struct {
	zone     string
	min, max float64
}{
	{zone: "Z1 Active Recovery", min: 0, max: 55},
	{zone: "Z2 Endurance", min: 55, max: 75},
	{zone: "Z3 Tempo", min: 75, max: 90},
	{zone: "Z4 Threshold", min: 90, max: 105},
	{zone: "Z5 VO2", min: 105, max: 120},
	{zone: "Z6 Anaerobic", min: 120, max: 150},
	{zone: "Z7 Neuromuscular", min: 150, max: 1000},
}

// series holds the per-record channels of an activity, one value per record
// that carries the channel.
type series struct {
	power   []float64
	hr      []float64
	cadence []float64
	speed   []float64
	// pairedPower and pairedHR hold records that carry both channels.
	pairedPower []float64
	pairedHR    []float64
}

func buildSeries(records []krd.Record) series {
	var s series
	for _, r := range records {
		if r.Power != nil && isFinite(*r.Power) && *r.Power >= 0 {
			s.power = append(s.power, *r.Power)
		}
		if r.HeartRate != nil && isFinite(*r.HeartRate) && *r.HeartRate > 0 {
			s.hr = append(s.hr, *r.HeartRate)
		}
		if r.Cadence != nil && isFinite(*r.Cadence) {
			s.cadence = append(s.cadence, *r.Cadence)
		}
		if r.Speed != nil && isFinite(*r.Speed) {
			s.speed = append(s.speed, *r.Speed)
		}
		if r.Power != nil && r.HeartRate != nil && *r.HeartRate > 0 {
			s.pairedPower = append(s.pairedPower, *r.Power)
			s.pairedHR = append(s.pairedHR, *r.HeartRate)
		}
	}
	return s
}

func buildActivitySummary(k *krd.KRD, ftpOverride float64) Summary {
	s := buildSeries(k.Records)
	summary := Summary{
		RecordCount:   len(k.Records),
		DurationS:     activityDuration(k),
		DistanceM:     activityDistance(k),
		AvgPowerW:     avgFloat(s.power),
		NPW:           normalizedPower(s.power),
		MaxPowerW:     maxFloat(s.power),
		AvgHRBPM:      avgFloat(s.hr),
		MaxHRBPM:      maxFloat(s.hr),
		AvgCadenceRPM: avgFloat(s.cadence),
		MaxCadenceRPM: maxFloat(s.cadence),
		AvgSpeedMPS:   avgFloat(s.speed),
		TotalWorkKJ:   totalWorkKJ(k.Records),
		Best20MinW:    bestRollingPower(s.power, best20Seconds),
		DecouplingPct: powerHRDecoupling(s.pairedPower, s.pairedHR),
	}

	ftp, source := ftpOverride, "override"
	if ftp <= 0 && len(s.power) >= best20Seconds {
		ftp, source = summary.Best20MinW*ftpFromBest20, "estimated_best_20min"
	}
	if ftp <= 0 {
		summary.Warnings = append(summary.Warnings, "ftp unavailable: IF, tss_like and power zones omitted")
		return summary
	}
	summary.FTPWUsed = floatPtr(ftp)
	summary.FTPSource = source
	ifv := summary.NPW / ftp
	summary.IF = floatPtr(ifv)
	summary.TSSLike = floatPtr((summary.DurationS / 3600.0) * ifv * ifv * 100.0)
	summary.PowerZones = powerZones(s.power, ftp)
	return summary
}

func activityDuration(k *krd.KRD) float64 {
	if len(k.Sessions) > 0 && k.Sessions[0].TotalElapsedTime > 0 {
		total := 0.0
		for _, s := range k.Sessions {
			total += s.TotalElapsedTime
		}
		return total
	}
	if n := len(k.Records); n > 1 {
		return k.Records[n-1].Timestamp.Sub(k.Records[0].Timestamp).Seconds()
	}
	return float64(len(k.Records))
}

func activityDistance(k *krd.KRD) *float64 {
	total, ok := 0.0, false
	for _, s := range k.Sessions {
		if s.TotalDistance != nil {
			total += *s.TotalDistance
			ok = true
		}
	}
	if ok {
		return floatPtr(total)
	}
	for i := len(k.Records) - 1; i >= 0; i-- {
		if d := k.Records[i].Distance; d != nil {
			return floatPtr(*d)
		}
	}
	return nil
}

// buildWorkoutSummary adds up the fixed-time steps of a workout, counting
// each repetition block repeatCount times.
func buildWorkoutSummary(w *krd.Workout) Summary {
	summary := Summary{}
	untimed := 0
	add := func(s krd.WorkoutStep, times int) {
		summary.StepCount++
		if s.Duration.Type == krd.DurationTime && s.Duration.Seconds != nil {
			summary.DurationS += *s.Duration.Seconds * float64(times)
			return
		}
		untimed++
	}
	for _, item := range w.Steps {
		switch {
		case item.Step != nil:
			add(*item.Step, 1)
		case item.Block != nil:
			for _, s := range item.Block.Steps {
				add(s, item.Block.RepeatCount)
			}
		}
	}
	if untimed > 0 {
		summary.UntimedSteps = untimed
		summary.Warnings = append(summary.Warnings, "duration_s covers fixed-time steps only")
	}
	return summary
}

func totalWorkKJ(records []krd.Record) float64 {
	work := 0.0
	for i := 1; i < len(records); i++ {
		prev := records[i-1]
		if prev.Power == nil {
			continue
		}
		delta := records[i].Timestamp.Sub(prev.Timestamp).Seconds()
		if delta <= 0 || delta > maxRecordGapSecs {
			delta = 1
		}
		work += *prev.Power * delta
	}
	return work / 1000.0
}

func normalizedPower(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}
	if len(power) < npWindowSeconds {
		return avgFloat(power)
	}
	sum := 0.0
	for i := 0; i < npWindowSeconds; i++ {
		sum += power[i]
	}
	totalFourth := 0.0
	count := 0
	for i := npWindowSeconds - 1; i < len(power); i++ {
		if i >= npWindowSeconds {
			sum += power[i] - power[i-npWindowSeconds]
		}
		totalFourth += math.Pow(sum/npWindowSeconds, 4)
		count++
	}
	return math.Pow(totalFourth/float64(count), 0.25)
}

func bestRollingPower(power []float64, seconds int) float64 {
	if len(power) == 0 || seconds <= 0 {
		return 0
	}
	if len(power) < seconds {
		return avgFloat(power)
	}
	sum := 0.0
	for i := 0; i < seconds; i++ {
		sum += power[i]
	}
	best := sum / float64(seconds)
	for i := seconds; i < len(power); i++ {
		sum += power[i] - power[i-seconds]
		if cur := sum / float64(seconds); cur > best {
			best = cur
		}
	}
	return best
}

// powerHRDecoupling compares the power:HR ratio of the second half against
// the first, in percent.
func powerHRDecoupling(power, hr []float64) float64 {
	n := len(power)
	if n == 0 || n != len(hr) || n < 20 {
		return 0
	}
	mid := n / 2
	p1, h1 := avgFloat(power[:mid]), avgFloat(hr[:mid])
	p2, h2 := avgFloat(power[mid:]), avgFloat(hr[mid:])
	if p1 == 0 || p2 == 0 || h1 == 0 || h2 == 0 {
		return 0
	}
	return ((p2/h2)/(p1/h1) - 1.0) * 100.0
}

func powerZones(power []float64, ftp float64) []ZoneDuration {
	if ftp <= 0 || len(power) == 0 {
		return nil
	}
	counts := make([]int, len(powerZoneBounds))
	total := 0
	for _, p := range power {
		pct := p / ftp * 100.0
		for i, z := range powerZoneBounds {
			if pct >= z.min && pct < z.max {
				counts[i]++
				total++
				break
			}
		}
	}
	if total == 0 {
		return nil
	}
	out := make([]ZoneDuration, 0, len(powerZoneBounds))
	for i, z := range powerZoneBounds {
		seconds := float64(counts[i])
		out = append(out, ZoneDuration{
			Zone:       z.zone,
			MinPctFTP:  z.min,
			MaxPctFTP:  z.max,
			Seconds:    seconds,
			Percentage: seconds / float64(total) * 100.0,
		})
	}
	return out
}

func avgFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
