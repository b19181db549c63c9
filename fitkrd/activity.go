package fitkrd

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tormoder/fit"

	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/units"
)

func readActivity(decoded *fit.File, opts Options) (*krd.KRD, error) {
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	meta := metadataFromFileID(decoded.FileId, opts)
	meta.Sport = krd.SportGeneric
	k := &krd.KRD{
		Version:  krd.Version,
		Type:     krd.TypeActivity,
		Metadata: meta,
	}

	for _, s := range activity.Sessions {
		if s == nil {
			continue
		}
		k.Sessions = append(k.Sessions, sessionFromMsg(s))
	}
	if len(k.Sessions) > 0 {
		k.Metadata.Sport = k.Sessions[0].Sport
		k.Metadata.SubSport = k.Sessions[0].SubSport
	}
	for _, l := range activity.Laps {
		if l == nil {
			continue
		}
		k.Laps = append(k.Laps, lapFromMsg(l))
	}
	k.Records = RecordsFromMsgs(activity.Records)
	for _, e := range activity.Events {
		if e == nil {
			continue
		}
		ev := krd.Event{
			Timestamp: e.Timestamp,
			EventType: strings.ToLower(fmt.Sprintf("%v_%v", e.Event, e.EventType)),
		}
		if d := validUint32(e.Data); d != 0 {
			ev.Data = krd.Float(float64(d))
		}
		k.Events = append(k.Events, ev)
	}

	if dropped := len(activity.Records) - len(k.Records); dropped > 0 {
		opts.log().WithField("dropped", dropped).Debug("skipped records without a timestamp")
	}
	return k, nil
}

func sessionFromMsg(s *fit.SessionMsg) krd.Session {
	out := krd.Session{
		StartTime:        validTimeOrZero(s.StartTime),
		TotalElapsedTime: safePositive(s.GetTotalElapsedTimeScaled()),
		TotalTimerTime:   positive(s.GetTotalTimerTimeScaled()),
		TotalDistance:    positive(s.GetTotalDistanceScaled()),
		Sport:            sportFromFIT(s.Sport),
		AvgHeartRate:     positive(float64(validUint8(s.AvgHeartRate))),
		MaxHeartRate:     positive(float64(validUint8(s.MaxHeartRate))),
		AvgCadence:       positive(cadenceFromAny(s.GetAvgCadence())),
		AvgPower:         positive(float64(validUint16(s.AvgPower))),
		MaxPower:         positive(float64(validUint16(s.MaxPower))),
		TotalCalories:    positive(float64(validUint16(s.TotalCalories))),
		TotalAscent:      positive(float64(validUint16(s.TotalAscent))),
	}
	if s.SubSport != fit.SubSportGeneric && uint8(s.SubSport) != math.MaxUint8 {
		out.SubSport = subSportName(s.SubSport)
	}
	return out
}

func lapFromMsg(l *fit.LapMsg) krd.Lap {
	elapsed := safePositive(l.GetTotalElapsedTimeScaled())
	if elapsed == 0 {
		elapsed = safePositive(l.GetTotalTimerTimeScaled())
	}
	return krd.Lap{
		StartTime:        validTimeOrZero(l.StartTime),
		TotalElapsedTime: elapsed,
		TotalDistance:    positive(l.GetTotalDistanceScaled()),
		AvgHeartRate:     positive(float64(validUint8(l.AvgHeartRate))),
		MaxHeartRate:     positive(float64(validUint8(l.MaxHeartRate))),
		AvgCadence:       positive(cadenceFromAny(l.GetAvgCadence())),
		AvgPower:         positive(float64(validUint16(l.AvgPower))),
		TotalCalories:    positive(float64(validUint16(l.TotalCalories))),
	}
}

// RecordsFromMsgs converts record messages in timestamp order. Records
// without a valid timestamp are skipped; sentinel values become absent
// fields and positions outside the globe are dropped.
func RecordsFromMsgs(msgs []*fit.RecordMsg) []krd.Record {
	out := make([]krd.Record, 0, len(msgs))
	for _, rec := range msgs {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		r := krd.Record{
			Timestamp: ts,
			Position:  positionFromMsg(rec),
			Distance:  positive(rec.GetDistanceScaled()),
		}
		if alt := rec.GetEnhancedAltitudeScaled(); isFinite(alt) {
			r.Altitude = krd.Float(alt)
		} else if alt := rec.GetAltitudeScaled(); isFinite(alt) {
			r.Altitude = krd.Float(alt)
		}
		if hr, ok := extractHeartRate(rec); ok {
			r.HeartRate = krd.Float(hr)
		}
		if cad, ok := extractCadence(rec); ok {
			r.Cadence = krd.Float(cad)
		}
		if p, ok := extractPower(rec); ok {
			r.Power = krd.Float(p)
		}
		if sp, ok := extractSpeed(rec); ok {
			r.Speed = krd.Float(sp)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func positionFromMsg(rec *fit.RecordMsg) *krd.Position {
	lat := rec.PositionLat.Semicircles()
	lon := rec.PositionLong.Semicircles()
	if lat == math.MaxInt32 || lon == math.MaxInt32 {
		return nil
	}
	if !units.ValidateCoordinates(float64(lat), float64(lon)) {
		return nil
	}
	return &krd.Position{
		Lat: units.SemicirclesToDegrees(float64(lat)),
		Lon: units.SemicirclesToDegrees(float64(lon)),
	}
}

func extractPower(rec *fit.RecordMsg) (float64, bool) {
	if rec.Power == math.MaxUint16 {
		return 0, false
	}
	return float64(rec.Power), true
}

func extractHeartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func extractCadence(rec *fit.RecordMsg) (float64, bool) {
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.Cadence), true
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func cadenceFromAny(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case float64:
		return safePositive(x)
	default:
		return 0
	}
}
