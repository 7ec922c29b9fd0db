// Package label renders record number barcodes for printing on wristbands
// and chart labels.
package label

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/haclabs/haccare/internal/common"
)

// Default label size in pixels.
const (
	DefaultWidth  = 300
	DefaultHeight = 80
)

// Code128PNG encodes id as a Code 128 barcode scaled to width x height and
// returns it as PNG. Zero dimensions fall back to the defaults.
func Code128PNG(id string, width, height int) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty record number", common.ErrInvalidInput)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	code, err := code128.Encode(id)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %q: %w", common.ErrInvalidInput, id, err)
	}
	// Scale refuses sizes below the symbol's module count.
	if b := code.Bounds(); width < b.Dx() {
		width = b.Dx()
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
