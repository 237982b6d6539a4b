package storage

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// DetectMIME sniffs the content type of an uploaded payload.
func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// AllowedMIME reports whether mime is in the allow-list. An empty list allows any image type.
func AllowedMIME(mime string, allowed []string) bool {
	if len(allowed) == 0 {
		return mimetype.EqualsAny(mime, "image/jpeg", "image/png")
	}
	return mimetype.EqualsAny(mime, allowed...)
}

// FitImage decodes data and scales it down so that neither side exceeds maxSide.
// Smaller images are re-encoded untouched. The output keeps PNG for PNG input and JPEG otherwise.
func FitImage(data []byte, maxSide int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if maxSide > 0 && (bounds.Dx() > maxSide || bounds.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}
	return encode(img, format)
}

// Thumbnail produces a square thumbnail cropped around the image centre.
func Thumbnail(data []byte, side int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos)
	return encode(thumb, format)
}

func encode(img image.Image, format string) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	if format == "png" {
		if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
