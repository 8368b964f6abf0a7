package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/rendersettings/internal/logging"
	"github.com/rook-computer/rendersettings/internal/settings"
)

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

func newRenderer(t *testing.T) (*LabelRenderer, *settings.Registry) {
	t.Helper()
	reg := settings.New(settings.WithLogger(logging.Nop()))
	reg.SetLabelFont("arial", settings.FontBold, 24)
	r := NewLabelRenderer(reg)
	r.Logger = logging.Nop()
	return r, reg
}

func hasPixel(img *image.RGBA, c color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}

func TestRender_EmptyText(t *testing.T) {
	r, _ := newRenderer(t)
	_, err := r.Render("", Options{})
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestRender_NoBackground(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetTextBackgroundMethod(settings.TextBackgroundNone)
	reg.SetLabelForegroundColor(red)
	reg.SetLabelBackgroundColor(blue)

	img, err := r.Render("HQ", Options{})
	require.NoError(t, err)

	m := r.Measure("HQ")
	assert.Equal(t, m.Width, img.Bounds().Dx())
	assert.Equal(t, m.Height, img.Bounds().Dy())
	assert.True(t, hasPixel(img, red))
	assert.False(t, hasPixel(img, blue))
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}

func TestRender_ColorFillCoversLabelBox(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetTextBackgroundMethod(settings.TextBackgroundColorFill)
	reg.SetTextOutlineWidth(3)
	reg.SetLabelForegroundColor(red)
	reg.SetLabelBackgroundColor(blue)

	img, err := r.Render("HQ", Options{Padding: 5})
	require.NoError(t, err)

	m := r.Measure("HQ")
	assert.Equal(t, m.Width+2*(3+5), img.Bounds().Dx())
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A, "padding stays clear")
	assert.Equal(t, blue, img.RGBAAt(5, 5), "fill starts inside the padding")
	assert.True(t, hasPixel(img, red))
}

func TestRender_OutlineWidthsFollowPolicy(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetLabelForegroundColor(red)
	reg.SetLabelBackgroundColor(blue)
	m := r.Measure("HQ")

	reg.SetTextBackgroundMethod(settings.TextBackgroundOutline)
	outlined, err := r.Render("HQ", Options{})
	require.NoError(t, err)
	assert.Equal(t, m.Width+4, outlined.Bounds().Dx())
	assert.True(t, hasPixel(outlined, blue))
	assert.True(t, hasPixel(outlined, red))

	reg.SetTextBackgroundMethod(settings.TextBackgroundOutlineQuick)
	quick, err := r.Render("HQ", Options{})
	require.NoError(t, err)
	assert.Equal(t, m.Width+2, quick.Bounds().Dx())
	assert.True(t, hasPixel(quick, blue))

	reg.SetTextOutlineWidth(0)
	bare, err := r.Render("HQ", Options{})
	require.NoError(t, err)
	assert.Equal(t, m.Width, bare.Bounds().Dx())
	assert.False(t, hasPixel(bare, blue))
}

func TestRender_AutoBackgroundFromThreshold(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetTextBackgroundMethod(settings.TextBackgroundColorFill)
	reg.SetLabelBackgroundColor(nil)

	reg.SetLabelForegroundColor(white)
	img, err := r.Render("A", Options{})
	require.NoError(t, err)
	assert.Equal(t, black, img.RGBAAt(0, 0))

	reg.SetLabelForegroundColor(black)
	img, err = r.Render("A", Options{})
	require.NoError(t, err)
	assert.Equal(t, white, img.RGBAAt(0, 0))
}

func TestRender_ForegroundInheritsLineColor(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetTextBackgroundMethod(settings.TextBackgroundNone)

	img, err := r.Render("HQ", Options{LineColor: green})
	require.NoError(t, err)
	assert.True(t, hasPixel(img, green))

	img, err = r.Render("HQ", Options{})
	require.NoError(t, err)
	assert.True(t, hasPixel(img, DefaultLineColor))
}

func TestRender_BothTextMethodsDraw(t *testing.T) {
	for _, method := range []settings.RenderMethod{settings.RenderShapes, settings.RenderNative} {
		t.Run(method.String(), func(t *testing.T) {
			r, reg := newRenderer(t)
			reg.SetTextRenderMethod(method)
			reg.SetTextBackgroundMethod(settings.TextBackgroundNone)
			reg.SetLabelForegroundColor(red)

			img, err := r.Render("HQ", Options{Canvas: white})
			require.NoError(t, err)
			assert.True(t, hasPixel(img, red))
			assert.Equal(t, white, img.RGBAAt(0, 0))
		})
	}
}

func TestDrawNative_RequiresOutlines(t *testing.T) {
	dst := image.NewAlpha(image.Rect(0, 0, 10, 10))
	err := drawNative(dst, "x", image.Pt(0, 8), settings.Font{}, 72)
	require.ErrorIs(t, err, errNoOutlines)
}

func TestMeasure_GrowsWithDPI(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetDeviceDPI(90)
	low := r.Measure("Label")
	reg.SetDeviceDPI(180)
	high := r.Measure("Label")

	assert.Greater(t, high.Width, low.Width)
	assert.Greater(t, high.Height, low.Height)
}

func TestAutoBackground(t *testing.T) {
	assert.Equal(t, black, AutoBackground(white, 160))
	assert.Equal(t, white, AutoBackground(black, 160))
	assert.Equal(t, black, AutoBackground(color.Gray{Y: 170}, 160))
	assert.Equal(t, white, AutoBackground(color.Gray{Y: 150}, 160))
}

func TestOffsets(t *testing.T) {
	assert.Empty(t, discOffsets(0))
	assert.Len(t, discOffsets(1), 4)
	assert.Len(t, ringOffsets(2), 8)
	assert.Nil(t, ringOffsets(0))
	assert.Equal(t, 1, outlineRadius(2))
	assert.Equal(t, 2, outlineRadius(4))
	assert.Equal(t, 0, outlineRadius(-3))
}

func TestScaleAndWritePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(1, 1, red)

	scaled := Scale(src, 4)
	require.Equal(t, image.Rect(0, 0, 12, 8), scaled.Bounds())
	assert.Equal(t, red, scaled.RGBAAt(5, 5))
	assert.Equal(t, red, scaled.RGBAAt(7, 7))
	assert.Equal(t, uint8(0), scaled.RGBAAt(0, 0).A)

	assert.Equal(t, src.Bounds(), Scale(src, 0).Bounds())

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, scaled))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, scaled.Bounds(), decoded.Bounds())
}

func TestRender_HugeOutlineWidthIsCapped(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetTextBackgroundMethod(settings.TextBackgroundOutline)
	reg.SetTextOutlineWidth(1 << 20)

	start := time.Now()
	img, err := r.Render("HQ", Options{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	m := r.Measure("HQ")
	assert.Equal(t, m.Width+2*MaxOutlineRadius, img.Bounds().Dx())
	assert.Equal(t, m.Height+2*MaxOutlineRadius, img.Bounds().Dy())
	assert.Equal(t, 1<<20, reg.TextOutlineWidth(), "stored width is left alone")
}

func TestRender_HugeFillWidthIsCapped(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetTextBackgroundMethod(settings.TextBackgroundColorFill)
	reg.SetTextOutlineWidth(1 << 30)

	img, err := r.Render("HQ", Options{})
	require.NoError(t, err)
	assert.Equal(t, r.Measure("HQ").Width+4*MaxOutlineRadius, img.Bounds().Dx())
}

func TestRender_RejectsOversizedLabels(t *testing.T) {
	r, reg := newRenderer(t)
	reg.SetLabelFont("arial", settings.FontBold, 100000)
	_, err := r.Render("HQ", Options{})
	require.ErrorIs(t, err, ErrLabelTooLarge)

	r, reg = newRenderer(t)
	reg.SetDeviceDPI(1 << 20)
	_, err = r.Render("HQ", Options{})
	require.ErrorIs(t, err, ErrLabelTooLarge)

	r, _ = newRenderer(t)
	_, err = r.Render("HQ", Options{Padding: 1 << 40})
	require.ErrorIs(t, err, ErrLabelTooLarge)
}

func TestOutlineOffsets_LargeMasksUseQuickRing(t *testing.T) {
	assert.Len(t, outlineOffsets(settings.TextBackgroundOutline, 2, 100), len(discOffsets(2)))
	assert.Len(t, outlineOffsets(settings.TextBackgroundOutline, MaxOutlineRadius, MaxCanvasPixels), 8)
	assert.Len(t, outlineOffsets(settings.TextBackgroundOutlineQuick, 2, 100), 8)
	assert.Equal(t, MaxOutlineRadius, outlineRadius(1<<40))
}
