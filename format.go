package kaiord

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnknownFormat is returned when a name or file extension matches no format.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnsupportedFormat is returned when a format cannot carry the document.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Format names a file format the converters read or write.
type Format string

const (
	FormatFIT Format = "fit"
	FormatTCX Format = "tcx"
	FormatZWO Format = "zwo"
	FormatKRD Format = "krd"
)

// Formats lists every registered format in a stable order.
var Formats = []Format{FormatFIT, FormatTCX, FormatZWO, FormatKRD}

// ParseFormat resolves a format name or extension. Matching is
// case-insensitive and a leading dot is ignored.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
	if _, ok := registry[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// DetectFormat picks the format from the file extension of path.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}
