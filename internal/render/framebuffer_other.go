//go:build !linux || !cgo

package render

import (
	"errors"
	"image"
	"image/color"
)

func ShowOnFramebuffer(string, image.Image, color.Color) error {
	return errors.New("framebuffer output is only supported on linux")
}
