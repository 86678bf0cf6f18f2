package glf

import (
	"fmt"
	"image"
)

// IntensityMap converts one raw acoustic sample to an 8-bit pixel value.
// Maps must clamp, never wrap.
type IntensityMap func(sample uint8) uint8

// LinearMap stretches the sample range [lo, hi] across the full 8-bit
// output range. Samples outside the window clamp to 0 or 255.
func LinearMap(lo, hi uint8) IntensityMap {
	if hi <= lo {
		return func(uint8) uint8 { return 0 }
	}
	span := int(hi) - int(lo)
	return func(s uint8) uint8 {
		v := int(s)
		switch {
		case v <= int(lo):
			return 0
		case v >= int(hi):
			return 255
		default:
			return uint8((v - int(lo)) * 255 / span)
		}
	}
}

// SonarImage is one reconstructed sweep: a row-major 8-bit intensity
// grid plus the record it came from. Rows are range lines, columns are
// beams, exactly as stored; no polar resampling happens here. The pixel
// buffer is freshly allocated and holds no reference into the document's
// backing buffer.
type SonarImage struct {
	Record *ImageRecord
	Width  int
	Height int
	Pix    []uint8
}

// At returns the pixel at column x, row y.
func (im *SonarImage) At(x, y int) uint8 {
	return im.Pix[y*im.Width+x]
}

// Gray wraps the pixel buffer as a stdlib greyscale image. The returned
// image shares im.Pix.
func (im *SonarImage) Gray() *image.Gray {
	return &image.Gray{
		Pix:    im.Pix,
		Stride: im.Width,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}

// buildImage lays a decoded payload out as the record's declared grid,
// mapping each sample through m. A nil map is the identity: samples are
// native 8-bit, so the default linear transform is a straight copy.
func buildImage(payload []byte, rec *ImageRecord, m IntensityMap, index int) (*SonarImage, error) {
	w, h := int(rec.Width), int(rec.Height)
	if w <= 0 || h <= 0 || len(payload)%w != 0 || len(payload)/w != h {
		return nil, fmt.Errorf("%w: record %d: %d samples into %dx%d grid", ErrGeometryMismatch, index, len(payload), w, h)
	}

	pix := make([]uint8, len(payload))
	if m == nil {
		copy(pix, payload)
	} else {
		for i, s := range payload {
			pix[i] = m(s)
		}
	}
	return &SonarImage{
		Record: rec,
		Width:  w,
		Height: h,
		Pix:    pix,
	}, nil
}
