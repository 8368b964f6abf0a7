//go:build linux && cgo

package render

import (
	"image"
	"image/color"
	"image/draw"

	fb "github.com/gonutz/framebuffer"

	"github.com/rook-computer/rendersettings/internal/render/layout"
)

// ShowOnFramebuffer clears the framebuffer device at path to background and
// draws img centered on it. Images larger than the screen are cropped.
func ShowOnFramebuffer(path string, img image.Image, background color.Color) error {
	dev, err := fb.Open(path)
	if err != nil {
		return err
	}
	defer dev.Close()

	if background == nil {
		background = color.Black
	}
	screen := dev.Bounds()
	draw.Draw(dev, screen, image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(dev, layout.Center(screen, img.Bounds()), img, img.Bounds().Min, draw.Over)
	return nil
}
