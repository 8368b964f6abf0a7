package fonts

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// attributedFace applies kerning and tracking on top of a plain face.
type attributedFace struct {
	font.Face
	kerning  bool
	tracking fixed.Int26_6
}

func withAttributes(face font.Face, opts FaceOptions) font.Face {
	tracking := trackingOffset(opts)
	if opts.Kerning && tracking == 0 {
		return face
	}
	return &attributedFace{Face: face, kerning: opts.Kerning, tracking: tracking}
}

func trackingOffset(opts FaceOptions) fixed.Int26_6 {
	pixelSize := float64(opts.Size) * opts.dpi() / 72
	return fixed.Int26_6(math.Round(float64(opts.Tracking) * pixelSize * 64))
}

func (f *attributedFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	dr, mask, maskp, advance, ok := f.Face.Glyph(dot, r)
	return dr, mask, maskp, advance + f.tracking, ok
}

func (f *attributedFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	bounds, advance, ok := f.Face.GlyphBounds(r)
	return bounds, advance + f.tracking, ok
}

func (f *attributedFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	advance, ok := f.Face.GlyphAdvance(r)
	return advance + f.tracking, ok
}

func (f *attributedFace) Kern(r0, r1 rune) fixed.Int26_6 {
	if !f.kerning {
		return 0
	}
	return f.Face.Kern(r0, r1)
}
