// Package render draws label previews the way the symbol renderers
// decorate modifier text, using whatever the settings registry holds at
// the moment of the call.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/rendersettings/internal/render/layout"
	"github.com/rook-computer/rendersettings/internal/settings"
)

var (
	ErrEmptyText = errors.New("empty label text")

	// ErrLabelTooLarge is returned when the label font or the finished
	// image would exceed MaxFontPixels or MaxCanvasPixels.
	ErrLabelTooLarge = errors.New("label too large")
)

// Logger is satisfied by logging.Logger.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Options control a single preview.
type Options struct {
	// LineColor is the symbol line color a label inherits when the
	// registry has no label foreground color. nil means DefaultLineColor.
	LineColor color.Color

	// Padding is the clear margin around the decorated label.
	Padding int

	// Canvas fills the image behind the label. nil leaves it transparent.
	Canvas color.Color
}

// TextMetrics is the extent of one line of text in pixels.
type TextMetrics struct {
	Width   int
	Height  int
	Ascent  int
	Descent int
}

// LabelRenderer draws labels with the registry's label font, text
// background policy, colors, text render method and device DPI.
type LabelRenderer struct {
	Settings *settings.Registry
	Logger   Logger
}

func NewLabelRenderer(reg *settings.Registry) *LabelRenderer {
	return &LabelRenderer{Settings: reg}
}

func (r *LabelRenderer) registry() *settings.Registry {
	if r.Settings == nil {
		return settings.GetInstance()
	}
	return r.Settings
}

// Measure reports the undecorated size of text in the current label font.
func (r *LabelRenderer) Measure(text string) TextMetrics {
	return measure(r.registry().LabelFont().Face, text)
}

// Render draws text onto a new image sized to the decorated label plus
// padding.
func (r *LabelRenderer) Render(text string, opts Options) (*image.RGBA, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	reg := r.registry()
	dpi := effectiveDPI(reg.DeviceDPI())
	f := reg.LabelFont()
	if px := fontPixels(f.Descriptor.Size, dpi); px > MaxFontPixels {
		return nil, fmt.Errorf("%w: font %dpt at %d dpi is %.0fpx, limit %dpx",
			ErrLabelTooLarge, f.Descriptor.Size, dpi, px, MaxFontPixels)
	}
	method, width := reg.TextBackground()
	fg := r.foreground(reg, opts)
	bg := r.background(reg, fg)

	metrics := measure(f.Face, text)
	margin := backgroundMargin(method, width)
	pad := min(max(opts.Padding, 0), MaxCanvasPixels)

	w, h := metrics.Width+2*(margin+pad), metrics.Height+2*(margin+pad)
	if int64(w)*int64(h) > MaxCanvasPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrLabelTooLarge, w, h, MaxCanvasPixels)
	}
	canvasRect := layout.Sized(w, h)
	textRect := layout.Inset(canvasRect, margin+pad)
	img := image.NewRGBA(canvasRect)
	if opts.Canvas != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Canvas), image.Point{}, draw.Src)
	}

	// Glyph coverage goes into a mask first so the outline passes can
	// stamp it without rasterizing the text again.
	mask := image.NewAlpha(canvasRect)
	baseline := image.Pt(textRect.Min.X, textRect.Min.Y+metrics.Ascent)
	r.drawText(mask, text, baseline, f, reg.TextRenderMethod(), dpi)

	bgSrc := image.NewUniform(bg)
	switch method {
	case settings.TextBackgroundColorFill:
		draw.Draw(img, layout.Outset(textRect, margin), bgSrc, image.Point{}, draw.Over)
	case settings.TextBackgroundOutline, settings.TextBackgroundOutlineQuick:
		stamp(img, mask, bgSrc, outlineOffsets(method, margin, w*h))
	}
	draw.DrawMask(img, img.Bounds(), image.NewUniform(fg), image.Point{}, mask, image.Point{}, draw.Over)

	if r.Logger != nil {
		r.Logger.Infof("render", "label %q %dx%d, background=%s width=%d", text, img.Bounds().Dx(), img.Bounds().Dy(), method, width)
	}
	return img, nil
}

func (r *LabelRenderer) foreground(reg *settings.Registry, opts Options) color.RGBA {
	if c, ok := reg.LabelForegroundColor(); ok {
		return c
	}
	if opts.LineColor != nil {
		return color.RGBAModel.Convert(opts.LineColor).(color.RGBA)
	}
	return DefaultLineColor
}

func (r *LabelRenderer) background(reg *settings.Registry, fg color.RGBA) color.RGBA {
	if c, ok := reg.LabelBackgroundColor(); ok {
		return c
	}
	return AutoBackground(fg, reg.TextBackgroundAutoColorThreshold())
}

// AutoBackground picks black for text whose luminance is above threshold
// and white otherwise.
func AutoBackground(fg color.Color, threshold int) color.RGBA {
	c := color.RGBAModel.Convert(fg).(color.RGBA)
	luma := float64(c.R)*0.299 + float64(c.G)*0.587 + float64(c.B)*0.114
	if luma > float64(threshold) {
		return color.RGBA{A: 0xFF}
	}
	return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
}

// outlineRadius turns a stroke width into the distance the outline
// extends past the glyph edge, at most MaxOutlineRadius.
func outlineRadius(width int) int {
	if width <= 0 {
		return 0
	}
	if width >= 2*MaxOutlineRadius {
		return MaxOutlineRadius
	}
	return (width + 1) / 2
}

// fontPixels is the pixel size of a size-point font at dpi.
func fontPixels(size, dpi int) float64 {
	return float64(size) * float64(dpi) / 72
}

func backgroundMargin(method settings.TextBackgroundMethod, width int) int {
	switch method {
	case settings.TextBackgroundColorFill:
		return min(max(width, 0), 2*MaxOutlineRadius)
	case settings.TextBackgroundOutline, settings.TextBackgroundOutlineQuick:
		return outlineRadius(width)
	default:
		return 0
	}
}

// discOffsets covers every pixel within radius, giving a round stroke.
func discOffsets(radius int) []image.Point {
	var out []image.Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if (dx != 0 || dy != 0) && dx*dx+dy*dy <= radius*radius {
				out = append(out, image.Pt(dx, dy))
			}
		}
	}
	return out
}

// outlineOffsets picks the stamp pattern for an outline policy. A round
// outline whose stamps would cover more than maxStampPixels is drawn as
// the quick ring instead.
func outlineOffsets(method settings.TextBackgroundMethod, radius, maskArea int) []image.Point {
	if method == settings.TextBackgroundOutline {
		disc := discOffsets(radius)
		if int64(len(disc))*int64(maskArea) <= maxStampPixels {
			return disc
		}
	}
	return ringOffsets(radius)
}

// ringOffsets is the quick outline: eight copies at the compass points.
func ringOffsets(radius int) []image.Point {
	if radius <= 0 {
		return nil
	}
	return []image.Point{
		image.Pt(-radius, -radius), image.Pt(0, -radius), image.Pt(radius, -radius),
		image.Pt(-radius, 0), image.Pt(radius, 0),
		image.Pt(-radius, radius), image.Pt(0, radius), image.Pt(radius, radius),
	}
}

func stamp(dst draw.Image, mask *image.Alpha, src image.Image, offsets []image.Point) {
	for _, d := range offsets {
		draw.DrawMask(dst, mask.Bounds().Add(d), src, image.Point{}, mask, mask.Bounds().Min, draw.Over)
	}
}

// Scale enlarges img by an integer factor with nearest-neighbor sampling
// so label pixels stay crisp.
func Scale(img image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(layout.Scale(layout.Sized(b.Dx(), b.Dy()), factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func effectiveDPI(dpi int) int {
	if dpi <= 0 {
		return FallbackDPI
	}
	return dpi
}
