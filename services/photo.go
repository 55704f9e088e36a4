// Package services - registration photo processing. Uploaded portraits are
// center-cropped to a fixed square, re-encoded as JPEG and stored inline on
// the athlete record as base64, matching what the ID-card layout expects.
// File: services/photo.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"

	"athproof/apperrors"
)

const (
	photoSize        = 400
	photoJPEGQuality = 80
)

// ProcessPhoto decodes an uploaded image, center-crops the largest square,
// scales it to 400x400 and returns a base64 data URL.
func ProcessPhoto(r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", apperrors.Validation("The uploaded file is not a readable image.")
	}

	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	cropRect := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, photoSize, photoSize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, cropRect, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: photoJPEGQuality}); err != nil {
		return "", fmt.Errorf("encode photo: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodePhoto reverses ProcessPhoto for consumers that need the raw JPEG
// bytes, e.g. embedding the portrait in a PDF.
func DecodePhoto(dataURL string) ([]byte, error) {
	payload := dataURL
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return raw, nil
}
