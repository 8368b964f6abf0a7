package render

import (
	"errors"
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

var ErrEmptyPayload = errors.New("empty qr payload")

// QRCode encodes payload, typically a compact profile, so another device
// can pick the settings up with a camera.
func QRCode(payload []byte, sizePx int) (image.Image, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(string(payload), qrcode.Low)
	if err != nil {
		return nil, err
	}

	return qrCode.Image(sizePx), nil
}
