// Package share renders QR codes for asset share links (signed URLs).
package share

import (
	"bytes"
	"image"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG returns PNG bytes of a QR code for the given text.
func QRPNG(text string, size int) ([]byte, error) {
	b, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	// validate the encoder output decodes
	if _, err := png.Decode(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return b, nil
}

// QRImage returns the QR as an image for further composition.
func QRImage(text string, size int) (image.Image, error) {
	b, err := QRPNG(text, size)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(b))
}
