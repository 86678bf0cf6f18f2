// Package render turns reconstructed sonar images into encoded files.
// It owns the display-side concerns the decoder deliberately avoids:
// false-color palettes and the PNG/JPEG encoders.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benthiclabs/glf/pkg/glf"
)

// Palette is a 256-entry lookup from acoustic intensity to display color.
type Palette [256]color.RGBA

// Greyscale is the identity ramp: intensity straight to luminance.
func Greyscale() Palette {
	var p Palette
	for i := range p {
		v := uint8(i)
		p[i] = color.RGBA{R: v, G: v, B: v, A: 0xFF}
	}
	return p
}

// Amber ramps black through amber to white, the usual sonar display look.
func Amber() Palette {
	var p Palette
	for i := range p {
		v := float64(i) / 255.0
		r := clamp255(v * 2.0 * 255.0)
		g := clamp255(v * 1.4 * 255.0 * v)
		b := clamp255((v - 0.75) * 4.0 * 255.0)
		p[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	return p
}

func clamp255(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

// Lookup resolves a palette by config name.
func Lookup(name string) (Palette, error) {
	switch strings.ToLower(name) {
	case "", "grey", "gray", "greyscale", "grayscale":
		return Greyscale(), nil
	case "amber":
		return Amber(), nil
	default:
		return Palette{}, fmt.Errorf("unknown palette %q", name)
	}
}

// Apply renders the sonar image through the palette. The greyscale ramp
// short-circuits to the image's own 8-bit buffer.
func Apply(img *glf.SonarImage, p Palette) image.Image {
	if p == Greyscale() {
		return img.Gray()
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i, s := range img.Pix {
		c := p[s]
		o := i * 4
		out.Pix[o+0] = c.R
		out.Pix[o+1] = c.G
		out.Pix[o+2] = c.B
		out.Pix[o+3] = c.A
	}
	return out
}

// Encode writes the rendered image to w in the named format ("png" or
// "jpeg"/"jpg").
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

// WriteFile renders img through p and encodes it to path, choosing the
// format from the file extension.
func WriteFile(path string, img *glf.SonarImage, p Palette) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("no image extension on %q", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, Apply(img, p), format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
