// Package bag is the flat field bag that format readers hand to the
// converters and that writers serialise back.
package bag

import (
	"encoding/xml"
	"sort"
	"strconv"
	"strings"
)

// Bag maps field names to numeric (float64) or string values.
type Bag map[string]any

// Has reports whether key is present.
func (b Bag) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Number returns the value at key when it holds a number. Strings are not
// coerced: "140" is not a number.
func (b Bag) Number(key string) (float64, bool) {
	switch v := b[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	default:
		return 0, false
	}
}

// NumberPtr is Number returning nil for absent or non-numeric values.
func (b Bag) NumberPtr(key string) *float64 {
	v, ok := b.Number(key)
	if !ok {
		return nil
	}
	return &v
}

// String returns the value at key when it holds a string.
func (b Bag) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// SetNumber stores v at key when v is non-nil.
func (b Bag) SetNumber(key string, v *float64) {
	if v != nil {
		b[key] = *v
	}
}

// Merge copies every entry of other into b.
func (b Bag) Merge(other Bag) {
	for k, v := range other {
		b[k] = v
	}
}

// Namespace is the URI a document may bind the kaiord prefix to.
const Namespace = "https://kaiord.dev/ns/1"

// Prefix is the XML prefix of restoration attributes.
const Prefix = "kaiord"

// FromXMLAttrs collects the kaiord-prefixed attributes into a bag keyed by
// keyPrefix plus the attribute's local name, e.g. "kaiord:originalDurationBpm".
// Values that parse as numbers are stored as float64.
func FromXMLAttrs(attrs []xml.Attr, keyPrefix string) Bag {
	out := Bag{}
	for _, a := range attrs {
		local, ok := kaiordLocal(a.Name)
		if !ok {
			continue
		}
		key := keyPrefix + local
		if f, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64); err == nil {
			out[key] = f
			continue
		}
		out[key] = a.Value
	}
	return out
}

func kaiordLocal(n xml.Name) (string, bool) {
	switch {
	case n.Space == Prefix || n.Space == Namespace:
		return n.Local, true
	case n.Space == "" && strings.HasPrefix(n.Local, Prefix+":"):
		return strings.TrimPrefix(n.Local, Prefix+":"), true
	default:
		return "", false
	}
}

// XMLAttrs renders every key starting with keyPrefix as a kaiord:-prefixed
// attribute, sorted by name.
func (b Bag) XMLAttrs(keyPrefix string) []xml.Attr {
	keys := make([]string, 0, len(b))
	for k := range b {
		if strings.HasPrefix(k, keyPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]xml.Attr, 0, len(keys))
	for _, k := range keys {
		var value string
		switch v := b[k].(type) {
		case string:
			value = v
		default:
			n, ok := b.Number(k)
			if !ok {
				continue
			}
			value = strconv.FormatFloat(n, 'f', -1, 64)
		}
		out = append(out, xml.Attr{
			Name:  xml.Name{Local: Prefix + ":" + strings.TrimPrefix(k, keyPrefix)},
			Value: value,
		})
	}
	return out
}
