package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Outset grows rect by paddingPx on all sides.
func Outset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	return image.Rect(rect.Min.X-paddingPx, rect.Min.Y-paddingPx, rect.Max.X+paddingPx, rect.Max.Y+paddingPx)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Sized returns a rectangle of size (widthPx,heightPx) with its top-left
// corner at the origin. Negative sizes are clamped to zero.
func Sized(widthPx, heightPx int) image.Rectangle {
	if widthPx < 0 {
		widthPx = 0
	}
	if heightPx < 0 {
		heightPx = 0
	}
	return image.Rect(0, 0, widthPx, heightPx)
}

// Scale multiplies both corners of rect by factor.
func Scale(rect image.Rectangle, factor int) image.Rectangle {
	rect = Normalize(rect)
	return image.Rect(rect.Min.X*factor, rect.Min.Y*factor, rect.Max.X*factor, rect.Max.Y*factor)
}

// Center returns a rectangle the size of inner centered in outer. The
// result may extend past outer when inner is larger.
func Center(outer, inner image.Rectangle) image.Rectangle {
	outer, inner = Normalize(outer), Normalize(inner)
	x := outer.Min.X + (outer.Dx()-inner.Dx())/2
	y := outer.Min.Y + (outer.Dy()-inner.Dy())/2
	return image.Rect(x, y, x+inner.Dx(), y+inner.Dy())
}
