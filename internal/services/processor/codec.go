package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	"github.com/phambaophuc/bg-remover/internal/models"
	_ "golang.org/x/image/webp"
)

// WebPQuality is fixed; it is not exposed at the API boundary.
const WebPQuality = 95

var ErrDecode = errors.New("cannot identify image")

// Decode reads PNG, JPEG, GIF, BMP, TIFF or WEBP bytes, honouring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrDecode)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// ToRGBA always returns an image carrying an alpha channel.
func ToRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

func Encode(img image.Image, format models.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeTo(w io.Writer, img image.Image, format models.Format) error {
	switch format {
	case models.FormatWebP:
		if err := webp.Encode(w, img, webp.Options{Quality: WebPQuality}); err != nil {
			return fmt.Errorf("encode webp: %w", err)
		}
	default:
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}
	return nil
}
