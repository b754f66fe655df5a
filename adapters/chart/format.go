// Package chart draws the survey charts: mirrored horizontal bars for the
// static report and date-indexed lines for the dashboard.
package chart

import (
	"path/filepath"
	"strings"

	"enefviz/internal/errors"
)

// Format is an output image encoding
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" or "svg", case-insensitively; empty means PNG
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	default:
		return "", errors.InvalidInput("unsupported image format " + s)
	}
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}
