// Package signature normalizes the two forms a captured signature arrives
// in: a pre-rendered PNG data URL, or the raw pen strokes, which get
// rasterized server-side onto the standard signing canvas.
package signature

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"

	domainerrors "claimshub/pkg/domain-errors"
)

// Canvas dimensions match the signing pad the client renders.
const (
	canvasWidth  = 600
	canvasHeight = 200
)

const dataURLPrefix = "data:image/png;base64,"

// Point is one sampled pen position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen-down segment.
type Stroke []Point

// FromDataURL validates a client-rendered signature image and returns it in
// canonical form.
func FromDataURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, dataURLPrefix) {
		return "", domainerrors.New(domainerrors.CodeBadRequest, "signature must be a PNG data URL")
	}
	payload := strings.TrimPrefix(raw, dataURLPrefix)
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", domainerrors.New(domainerrors.CodeBadRequest, "signature data is not valid base64")
	}
	return raw, nil
}

// FromStrokes rasterizes pen strokes onto the signing canvas and returns a
// PNG data URL. At least one stroke with two points is required; a signature
// is a mark, not a tap.
func FromStrokes(strokes []Stroke) (string, error) {
	drawable := false
	for _, s := range strokes {
		if len(s) >= 2 {
			drawable = true
			break
		}
	}
	if !drawable {
		return "", domainerrors.New(domainerrors.CodeBadRequest, "signature strokes are empty")
	}

	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	for y := 0; y < canvasHeight; y++ {
		for x := 0; x < canvasWidth; x++ {
			img.Set(x, y, color.White)
		}
	}
	ink := color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	for _, s := range strokes {
		for i := 1; i < len(s); i++ {
			drawLine(img, s[i-1], s[i], ink)
		}
	}

	var buf strings.Builder
	encoder := base64.NewEncoder(base64.StdEncoding, &buf)
	if err := png.Encode(encoder, img); err != nil {
		return "", domainerrors.Wrap(domainerrors.CodeInternal, "encode signature", err)
	}
	if err := encoder.Close(); err != nil {
		return "", domainerrors.Wrap(domainerrors.CodeInternal, "encode signature", err)
	}
	return dataURLPrefix + buf.String(), nil
}

// drawLine plots the segment from a to b with integer stepping dense enough
// that adjacent samples connect.
func drawLine(img *image.RGBA, a, b Point, ink color.RGBA) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := max(abs(dx), abs(dy))
	if steps < 1 {
		steps = 1
	}
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		x := int(a.X + dx*t)
		y := int(a.Y + dy*t)
		if x < 0 || x >= canvasWidth || y < 0 || y >= canvasHeight {
			continue
		}
		img.SetRGBA(x, y, ink)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
