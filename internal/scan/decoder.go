package scan

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var ErrNoCode = errors.New("scan: no barcode in frame")

// Decoder extracts a barcode value from an encoded image (PNG or JPEG).
type Decoder interface {
	Decode(frame []byte) (string, error)
}

// ImageDecoder tries the retail 1D symbologies first and QR last.
type ImageDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{
		readers: []gozxing.Reader{
			oned.NewEAN13Reader(),
			oned.NewEAN8Reader(),
			oned.NewUPCAReader(),
			oned.NewUPCEReader(),
			oned.NewCode128Reader(),
			qrcode.NewQRCodeReader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

func (d *ImageDecoder) Decode(frame []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", fmt.Errorf("scan: decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("scan: binarize: %w", err)
	}
	for _, r := range d.readers {
		res, err := r.Decode(bmp, d.hints)
		r.Reset()
		if err == nil {
			return res.GetText(), nil
		}
	}
	return "", ErrNoCode
}

// NormalizeText cleans a code typed by a keyboard-wedge scanner.
func NormalizeText(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", ErrNoCode
	}
	return code, nil
}
