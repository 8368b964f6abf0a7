package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsetOutset(t *testing.T) {
	r := image.Rect(0, 0, 20, 10)

	assert.Equal(t, image.Rect(2, 2, 18, 8), Inset(r, 2))
	assert.Equal(t, r, Inset(r, 0))
	assert.Equal(t, image.Rect(-3, -3, 23, 13), Outset(r, 3))
	assert.Equal(t, r, Outset(r, -1))
	assert.Equal(t, r, Outset(Inset(r, 4), 4))
}

func TestInset_OverShrinkNormalizes(t *testing.T) {
	got := Inset(image.Rect(0, 0, 4, 4), 3)
	assert.True(t, got.Min.X <= got.Max.X)
	assert.True(t, got.Min.Y <= got.Max.Y)
}

func TestSizedAndScale(t *testing.T) {
	assert.Equal(t, image.Rect(0, 0, 5, 0), Sized(5, -2))
	assert.Equal(t, image.Rect(0, 0, 15, 30), Scale(Sized(5, 10), 3))
	assert.Equal(t, image.Rect(2, 4, 6, 8), Scale(image.Rect(3, 4, 1, 2), 2))
}

func TestCenter(t *testing.T) {
	assert.Equal(t, image.Rect(40, 45, 60, 55), Center(image.Rect(0, 0, 100, 100), image.Rect(7, 7, 27, 17)))
	assert.Equal(t, image.Rect(-5, 0, 15, 10), Center(image.Rect(0, 0, 10, 10), image.Rect(0, 0, 20, 10)))
}
