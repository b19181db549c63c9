package tcx

import (
	"encoding/xml"
	"strings"

	"github.com/lucasjlepore/kaiord/internal/bag"
)

const (
	tcxNamespace = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
	tpxNamespace = "http://www.garmin.com/xmlschemas/ActivityExtension/v2"
)

// TrainingCenterDatabase is the document root.
type TrainingCenterDatabase struct {
	XMLName     xml.Name    `xml:"TrainingCenterDatabase"`
	Xmlns       string      `xml:"xmlns,attr,omitempty"`
	XmlnsXsi    string      `xml:"xmlns:xsi,attr,omitempty"`
	XmlnsKaiord string      `xml:"xmlns:kaiord,attr,omitempty"`
	Activities  *Activities `xml:"Activities,omitempty"`
	Workouts    *Workouts   `xml:"Workouts,omitempty"`
}

type Workouts struct {
	Workout []Workout `xml:"Workout"`
}

type Workout struct {
	Sport string `xml:"Sport,attr"`
	Name  string `xml:"Name"`
	Steps []Step `xml:"Step"`
}

// Step is either a Step_t or a Repeat_t, told apart by xsi:type.
type Step struct {
	Attrs       []xml.Attr `xml:",any,attr"`
	StepID      int        `xml:"StepId"`
	Name        string     `xml:"Name,omitempty"`
	Repetitions int        `xml:"Repetitions,omitempty"`
	Duration    *Duration  `xml:"Duration,omitempty"`
	Intensity   string     `xml:"Intensity,omitempty"`
	Target      *Target    `xml:"Target,omitempty"`
	Children    []Step     `xml:"Child"`
}

type Duration struct {
	Attrs     []xml.Attr `xml:",any,attr"`
	Seconds   *float64   `xml:"Seconds,omitempty"`
	Meters    *float64   `xml:"Meters,omitempty"`
	HeartRate *Measure   `xml:"HeartRate,omitempty"`
	Calories  *float64   `xml:"Calories,omitempty"`
}

type Target struct {
	Attrs         []xml.Attr `xml:",any,attr"`
	SpeedZone     *Zone      `xml:"SpeedZone,omitempty"`
	HeartRateZone *Zone      `xml:"HeartRateZone,omitempty"`
	Low           *float64   `xml:"Low,omitempty"`
	High          *float64   `xml:"High,omitempty"`
}

// Zone is a predefined (Number) or custom (Low/High) heart rate or speed zone.
type Zone struct {
	Attrs                 []xml.Attr `xml:",any,attr"`
	Number                *float64   `xml:"Number,omitempty"`
	ViewAs                string     `xml:"ViewAs,omitempty"`
	LowInMetersPerSecond  *float64   `xml:"LowInMetersPerSecond,omitempty"`
	HighInMetersPerSecond *float64   `xml:"HighInMetersPerSecond,omitempty"`
	Low                   *Measure   `xml:"Low,omitempty"`
	High                  *Measure   `xml:"High,omitempty"`
}

// Measure is a typed value such as HeartRateInBeatsPerMinute_t.
type Measure struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Value float64    `xml:"Value"`
}

type Activities struct {
	Activity []Activity `xml:"Activity"`
}

type Activity struct {
	Sport string `xml:"Sport,attr"`
	ID    string `xml:"Id"`
	Laps  []Lap  `xml:"Lap"`
}

type Lap struct {
	StartTime        string     `xml:"StartTime,attr"`
	TotalTimeSeconds float64    `xml:"TotalTimeSeconds"`
	DistanceMeters   *float64   `xml:"DistanceMeters,omitempty"`
	Calories         *float64   `xml:"Calories,omitempty"`
	AverageHeartRate *ValueElem `xml:"AverageHeartRateBpm,omitempty"`
	MaximumHeartRate *ValueElem `xml:"MaximumHeartRateBpm,omitempty"`
	Intensity        string     `xml:"Intensity,omitempty"`
	Cadence          *float64   `xml:"Cadence,omitempty"`
	TriggerMethod    string     `xml:"TriggerMethod,omitempty"`
	Track            *Track     `xml:"Track,omitempty"`
}

type ValueElem struct {
	Value float64 `xml:"Value"`
}

type Track struct {
	Trackpoints []Trackpoint `xml:"Trackpoint"`
}

type Trackpoint struct {
	Time           string         `xml:"Time"`
	Position       *Position      `xml:"Position,omitempty"`
	AltitudeMeters *float64       `xml:"AltitudeMeters,omitempty"`
	DistanceMeters *float64       `xml:"DistanceMeters,omitempty"`
	HeartRate      *ValueElem     `xml:"HeartRateBpm,omitempty"`
	Cadence        *float64       `xml:"Cadence,omitempty"`
	Extensions     *TrackpointExt `xml:"Extensions,omitempty"`
}

type Position struct {
	LatitudeDegrees  float64 `xml:"LatitudeDegrees"`
	LongitudeDegrees float64 `xml:"LongitudeDegrees"`
}

type TrackpointExt struct {
	TPX *TPX `xml:"TPX,omitempty"`
}

type TPX struct {
	XMLName xml.Name `xml:"TPX"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Speed   *float64 `xml:"Speed,omitempty"`
	Watts   *float64 `xml:"Watts,omitempty"`
}

// xsiType returns the local xsi:type of an element, with any prefix removed.
func xsiType(attrs []xml.Attr) string {
	for _, a := range attrs {
		if a.Name.Local == "type" && (a.Name.Space == xsiNamespace || a.Name.Space == "xsi") {
			return stripPrefix(a.Value)
		}
		if a.Name.Space == "" && a.Name.Local == "xsi:type" {
			return stripPrefix(a.Value)
		}
	}
	return ""
}

func stripPrefix(v string) string {
	if i := strings.IndexByte(v, ':'); i >= 0 {
		return v[i+1:]
	}
	return v
}

func typed(t string, extra ...xml.Attr) []xml.Attr {
	return append([]xml.Attr{{Name: xml.Name{Local: "xsi:type"}, Value: t}}, extra...)
}

// attrBag collects the restoration attributes of a step under the
// "@_kaiord:" key prefix.
func attrBag(attrs []xml.Attr) bag.Bag {
	return bag.FromXMLAttrs(attrs, keyPrefix)
}
