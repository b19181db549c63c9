package tcx

import (
	"sort"
	"time"

	"github.com/lucasjlepore/kaiord/krd"
	"github.com/lucasjlepore/kaiord/units"
)

func parseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func readActivity(a Activity, opts Options) (*krd.KRD, error) {
	log := opts.log()
	sport := sportFromTCX(a.Sport)

	out := &krd.KRD{
		Version:  krd.Version,
		Type:     krd.TypeActivity,
		Metadata: krd.Metadata{Sport: sport},
	}

	session := krd.Session{Sport: sport}
	for i, l := range a.Laps {
		start, ok := parseTime(l.StartTime)
		if !ok {
			log.WithField("lap", i).Warn("lap has no valid start time, skipped")
			continue
		}
		lap := krd.Lap{
			StartTime:        start,
			TotalElapsedTime: l.TotalTimeSeconds,
			TotalDistance:    l.DistanceMeters,
			AvgCadence:       l.Cadence,
			TotalCalories:    l.Calories,
		}
		if l.AverageHeartRate != nil {
			lap.AvgHeartRate = krd.Float(l.AverageHeartRate.Value)
		}
		if l.MaximumHeartRate != nil {
			lap.MaxHeartRate = krd.Float(l.MaximumHeartRate.Value)
		}
		out.Laps = append(out.Laps, lap)
		addLap(&session, lap)

		if l.Track != nil {
			out.Records = append(out.Records, recordsFromTrack(l.Track.Trackpoints)...)
		}
	}
	sort.SliceStable(out.Records, func(i, j int) bool {
		return out.Records[i].Timestamp.Before(out.Records[j].Timestamp)
	})

	created, ok := parseTime(a.ID)
	switch {
	case ok:
	case len(out.Laps) > 0:
		created = out.Laps[0].StartTime
	default:
		created = opts.now()
	}
	out.Metadata.Created = created
	if len(out.Laps) > 0 {
		out.Sessions = []krd.Session{session}
	}
	return out, nil
}

// addLap folds a lap into the activity's single session.
func addLap(s *krd.Session, l krd.Lap) {
	if s.StartTime.IsZero() {
		s.StartTime = l.StartTime
	}
	s.TotalElapsedTime += l.TotalElapsedTime
	s.TotalDistance = sum(s.TotalDistance, l.TotalDistance)
	s.TotalCalories = sum(s.TotalCalories, l.TotalCalories)
	if l.MaxHeartRate != nil && (s.MaxHeartRate == nil || *l.MaxHeartRate > *s.MaxHeartRate) {
		s.MaxHeartRate = krd.Float(*l.MaxHeartRate)
	}
}

func sum(total, v *float64) *float64 {
	if v == nil {
		return total
	}
	if total == nil {
		return krd.Float(*v)
	}
	return krd.Float(*total + *v)
}

func recordsFromTrack(points []Trackpoint) []krd.Record {
	out := make([]krd.Record, 0, len(points))
	for _, p := range points {
		ts, ok := parseTime(p.Time)
		if !ok {
			continue
		}
		rec := krd.Record{
			Timestamp: ts,
			Altitude:  p.AltitudeMeters,
			Distance:  p.DistanceMeters,
			Cadence:   p.Cadence,
		}
		if p.Position != nil {
			lat := float64(units.DegreesToSemicircles(p.Position.LatitudeDegrees))
			lon := float64(units.DegreesToSemicircles(p.Position.LongitudeDegrees))
			if units.ValidateCoordinates(lat, lon) {
				rec.Position = &krd.Position{Lat: p.Position.LatitudeDegrees, Lon: p.Position.LongitudeDegrees}
			}
		}
		if p.HeartRate != nil {
			rec.HeartRate = krd.Float(p.HeartRate.Value)
		}
		if p.Extensions != nil && p.Extensions.TPX != nil {
			rec.Speed = p.Extensions.TPX.Speed
			rec.Power = p.Extensions.TPX.Watts
		}
		out = append(out, rec)
	}
	return out
}

func writeActivity(k *krd.KRD) Activity {
	out := Activity{
		Sport: sportToTCX(k.Metadata.Sport),
		ID:    formatTime(k.Metadata.Created),
	}

	laps := k.Laps
	if len(laps) == 0 {
		laps = []krd.Lap{wholeActivityLap(k)}
	}

	records := append([]krd.Record(nil), k.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	for i, l := range laps {
		n := len(records)
		if i+1 < len(laps) {
			next := laps[i+1].StartTime
			n = sort.Search(len(records), func(j int) bool { return !records[j].Timestamp.Before(next) })
		}
		out.Laps = append(out.Laps, lapToTCX(l, records[:n]))
		records = records[n:]
	}
	return out
}

// wholeActivityLap stands in for the lap list of an activity that has none.
func wholeActivityLap(k *krd.KRD) krd.Lap {
	lap := krd.Lap{StartTime: k.Metadata.Created}
	if len(k.Sessions) > 0 {
		s := k.Sessions[0]
		lap.StartTime = s.StartTime
		lap.TotalElapsedTime = s.TotalElapsedTime
		lap.TotalDistance = s.TotalDistance
		lap.TotalCalories = s.TotalCalories
		lap.AvgHeartRate = s.AvgHeartRate
		lap.MaxHeartRate = s.MaxHeartRate
		return lap
	}
	if n := len(k.Records); n > 0 {
		lap.StartTime = k.Records[0].Timestamp
		lap.TotalElapsedTime = k.Records[n-1].Timestamp.Sub(lap.StartTime).Seconds()
	}
	return lap
}

func lapToTCX(l krd.Lap, records []krd.Record) Lap {
	out := Lap{
		StartTime:        formatTime(l.StartTime),
		TotalTimeSeconds: l.TotalElapsedTime,
		DistanceMeters:   l.TotalDistance,
		Calories:         l.TotalCalories,
		Intensity:        intensityActive,
		Cadence:          l.AvgCadence,
		TriggerMethod:    "Manual",
	}
	if l.AvgHeartRate != nil {
		out.AverageHeartRate = &ValueElem{Value: *l.AvgHeartRate}
	}
	if l.MaxHeartRate != nil {
		out.MaximumHeartRate = &ValueElem{Value: *l.MaxHeartRate}
	}
	if len(records) == 0 {
		return out
	}

	out.Track = &Track{Trackpoints: make([]Trackpoint, 0, len(records))}
	for _, r := range records {
		p := Trackpoint{
			Time:           formatTime(r.Timestamp),
			AltitudeMeters: r.Altitude,
			DistanceMeters: r.Distance,
			Cadence:        r.Cadence,
		}
		if r.Position != nil {
			p.Position = &Position{LatitudeDegrees: r.Position.Lat, LongitudeDegrees: r.Position.Lon}
		}
		if r.HeartRate != nil {
			p.HeartRate = &ValueElem{Value: *r.HeartRate}
		}
		if r.Speed != nil || r.Power != nil {
			p.Extensions = &TrackpointExt{TPX: &TPX{Xmlns: tpxNamespace, Speed: r.Speed, Watts: r.Power}}
		}
		out.Track.Trackpoints = append(out.Track.Trackpoints, p)
	}
	return out
}
