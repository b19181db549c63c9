package zwo

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/lucasjlepore/kaiord/internal/bag"
)

// WorkoutFile is the workout_file document root.
type WorkoutFile struct {
	XMLName     xml.Name `xml:"workout_file"`
	XmlnsKaiord string   `xml:"xmlns:kaiord,attr,omitempty"`
	Author      string   `xml:"author,omitempty"`
	Name        string   `xml:"name"`
	Description string   `xml:"description,omitempty"`
	SportType   string   `xml:"sportType"`
	Tags        *Tags    `xml:"tags,omitempty"`
	Workout     Segments `xml:"workout"`
}

type Tags struct {
	Tag []Tag `xml:"tag"`
}

type Tag struct {
	Name string `xml:"name,attr"`
}

// Segments keeps the interval elements in document order.
type Segments struct {
	Elements []Element `xml:",any"`
}

// Element is one interval element; its name is the interval type.
type Element struct {
	XMLName    xml.Name
	Attrs      []xml.Attr  `xml:",any,attr"`
	TextEvents []TextEvent `xml:"textevent"`
}

type TextEvent struct {
	TimeOffset *float64 `xml:"timeoffset,attr,omitempty"`
	DistOffset *float64 `xml:"distoffset,attr,omitempty"`
	Message    string   `xml:"message,attr"`
}

// Interval attribute names.
const (
	attrDuration       = "Duration"
	attrPower          = "Power"
	attrPowerLow       = "PowerLow"
	attrPowerHigh      = "PowerHigh"
	attrCadence        = "Cadence"
	attrCadenceResting = "CadenceResting"
	attrFlatRoad       = "FlatRoad"
	attrRepeat         = "Repeat"
	attrOnDuration     = "OnDuration"
	attrOffDuration    = "OffDuration"
	attrOnPower        = "OnPower"
	attrOffPower       = "OffPower"
)

// attrOrder is the order plain attributes are written in.
var attrOrder = []string{
	attrRepeat,
	attrDuration,
	attrOnDuration,
	attrOffDuration,
	attrPower,
	attrPowerLow,
	attrPowerHigh,
	attrOnPower,
	attrOffPower,
	attrCadence,
	attrCadenceResting,
	attrFlatRoad,
}

// canonicalAttr maps attribute names case-insensitively; Zwift files are
// not consistent about case.
var canonicalAttr = func() map[string]string {
	m := make(map[string]string, len(attrOrder))
	for _, a := range attrOrder {
		m[strings.ToLower(a)] = a
	}
	return m
}()

// elementBag reads an element's attributes into a field bag. Plain
// attributes are keyed by their canonical name, restoration attributes
// by the kaiord: prefix.
func elementBag(attrs []xml.Attr) bag.Bag {
	out := bag.FromXMLAttrs(attrs, keyPrefix)
	for _, a := range attrs {
		if a.Name.Space != "" {
			continue
		}
		name, ok := canonicalAttr[strings.ToLower(a.Name.Local)]
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64); err == nil {
			out[name] = f
		}
	}
	return out
}

// xmlAttrs writes a field bag back as element attributes.
func xmlAttrs(b bag.Bag) []xml.Attr {
	out := make([]xml.Attr, 0, len(b))
	for _, name := range attrOrder {
		v, ok := b.Number(name)
		if !ok {
			continue
		}
		out = append(out, xml.Attr{
			Name:  xml.Name{Local: name},
			Value: strconv.FormatFloat(v, 'f', -1, 64),
		})
	}
	return append(out, b.XMLAttrs(keyPrefix)...)
}
