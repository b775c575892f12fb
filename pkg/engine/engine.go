// Package engine provides the adapter for the external rendering engine.
//
// The engine is a single logical HTTP endpoint that turns diagram source into
// an image: POST {base}/{format} with the source as a raw text/plain body.
// On success the engine replies 200 with binary image bytes. Diagram syntax
// problems are NOT hard failures: the engine still replies 200, but with an
// error image rendered from the problem and an X-Plantuml-Diagram-Error
// response header carrying a short description.
//
// The adapter is stateless; concurrency toward the engine is bounded by the
// caller (see the convert package).
package engine

import (
	"fmt"
	"strings"
)

// Format is an output image format understood by the rendering engine.
type Format string

// Supported output formats.
const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat converts a user-supplied string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", fmt.Errorf("unknown image format: %q (supported: png, svg)", s)
	}
}

// MIME returns the content type for the format.
func (f Format) MIME() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// pngMagic is the PNG file signature prefix.
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

// IsPNG reports whether data begins with the PNG magic header.
func IsPNG(data []byte) bool {
	if len(data) < len(pngMagic) {
		return false
	}
	for i, b := range pngMagic {
		if data[i] != b {
			return false
		}
	}
	return true
}
