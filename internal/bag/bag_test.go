package bag

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberIsStrict(t *testing.T) {
	b := Bag{"bpm": 140.0, "str": "140", "int": 3}

	v, ok := b.Number("bpm")
	assert.True(t, ok)
	assert.Equal(t, 140.0, v)

	_, ok = b.Number("str")
	assert.False(t, ok)

	v, ok = b.Number("int")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	assert.Nil(t, b.NumberPtr("missing"))
}

type element struct {
	XMLName  xml.Name   `xml:"SteadyState"`
	Duration float64    `xml:"Duration,attr"`
	Attrs    []xml.Attr `xml:",any,attr"`
}

func TestXMLAttrsRoundTrip(t *testing.T) {
	b := Bag{
		"kaiord:originalDurationType": "heart_rate_less_than",
		"kaiord:originalDurationBpm":  140.0,
		"other":                       1.0,
	}
	out, err := xml.Marshal(element{Duration: 300, Attrs: b.XMLAttrs("kaiord:")})
	require.NoError(t, err)
	assert.Equal(t, `<SteadyState Duration="300" kaiord:originalDurationBpm="140" kaiord:originalDurationType="heart_rate_less_than"></SteadyState>`, string(out))

	var back element
	require.NoError(t, xml.Unmarshal(out, &back))
	got := FromXMLAttrs(back.Attrs, "kaiord:")
	assert.Equal(t, Bag{
		"kaiord:originalDurationType": "heart_rate_less_than",
		"kaiord:originalDurationBpm":  140.0,
	}, got)
}

func TestFromXMLAttrsAcceptsBoundNamespace(t *testing.T) {
	doc := `<SteadyState xmlns:k="` + Namespace + `" Duration="60" k:originalDurationWatts="200"/>`
	var e element
	require.NoError(t, xml.Unmarshal([]byte(doc), &e))

	got := FromXMLAttrs(e.Attrs, "@_kaiord:")
	assert.Equal(t, Bag{"@_kaiord:originalDurationWatts": 200.0}, got)
}
