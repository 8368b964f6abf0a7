package render

import "image/color"

// Preview defaults.
var (
	// DefaultLineColor stands in for the symbol line color when a label has
	// no foreground color of its own and the caller supplies none.
	DefaultLineColor = color.RGBA{A: 0xFF}

	// DefaultPadding is the clear margin the CLI puts around a preview.
	DefaultPadding = 4

	// FallbackDPI is used when the registry holds a non-positive DPI.
	FallbackDPI = 72
)

// Preview limits. The registry stores any width, size or DPI it is given;
// these bound what a single Render call will draw.
const (
	// MaxOutlineRadius caps how far an outline extends past the glyphs.
	MaxOutlineRadius = 32

	// MaxFontPixels caps the label font's pixel size (points at the device
	// DPI).
	MaxFontPixels = 512

	// MaxCanvasPixels caps the area of a rendered label.
	MaxCanvasPixels = 1 << 22

	// maxStampPixels bounds the mask pixels drawn for a round outline.
	// Larger labels get the quick outline instead.
	maxStampPixels = 1 << 26
)
