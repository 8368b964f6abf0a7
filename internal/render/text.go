package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/rendersettings/internal/settings"
)

var errNoOutlines = errors.New("font has no outlines")

func measure(face font.Face, text string) TextMetrics {
	drawer := &font.Drawer{Face: face}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	return TextMetrics{
		Width:   drawer.MeasureString(text).Ceil(),
		Height:  ascent + descent,
		Ascent:  ascent,
		Descent: descent,
	}
}

// drawText writes glyph coverage for text into dst with the baseline
// starting at origin. Native drawing goes through the freetype rasterizer
// and falls back to the face when the font has no TrueType outlines.
func (r *LabelRenderer) drawText(dst draw.Image, text string, origin image.Point, f settings.Font, method settings.RenderMethod, dpi int) {
	if method == settings.RenderNative {
		err := drawNative(dst, text, origin, f, dpi)
		if err == nil {
			return
		}
		if r.Logger != nil {
			r.Logger.Errorf("render", "native text failed, drawing shapes: %v", err)
		}
	}
	drawShapes(dst, text, origin, f.Face)
}

// drawShapes draws through the face, so kerning and tracking from the
// label font descriptor apply.
func drawShapes(dst draw.Image, text string, origin image.Point, face font.Face) {
	drawer := &font.Drawer{Dst: dst, Src: image.Opaque, Face: face}
	drawer.Dot = fixed.P(origin.X, origin.Y)
	drawer.DrawString(text)
}

// drawNative uses the font's own advances and kerning; tracking is not
// applied.
func drawNative(dst draw.Image, text string, origin image.Point, f settings.Font, dpi int) error {
	if f.TrueType == nil {
		return errNoOutlines
	}
	c := freetype.NewContext()
	c.SetDPI(float64(dpi))
	c.SetFont(f.TrueType)
	c.SetFontSize(float64(f.Descriptor.Size))
	c.SetHinting(font.HintingFull)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.Opaque)
	if _, err := c.DrawString(text, freetype.Pt(origin.X, origin.Y)); err != nil {
		return fmt.Errorf("freetype: %w", err)
	}
	return nil
}
