package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// SkinToneDetector is a cheap presence check for a face in a selfie: the
// photo must be neither too dark nor blown out, and enough of its centre
// must be skin-coloured. It is not a liveness check.
type SkinToneDetector struct {
	GridSize      int
	MinBrightness float64
	MaxBrightness float64
	MinSkinRatio  float64
}

// NewSkinToneDetector returns the detector with its default thresholds
func NewSkinToneDetector() *SkinToneDetector {
	return &SkinToneDetector{
		GridSize:      40,
		MinBrightness: 40,
		MaxBrightness: 230,
		MinSkinRatio:  0.2,
	}
}

// DetectFace implements FaceDetector
func (d *SkinToneDetector) DetectFace(data []byte) (bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decode photo: %w", err)
	}

	b := img.Bounds()
	if b.Dx() < d.GridSize || b.Dy() < d.GridSize {
		return false, nil
	}

	var (
		brightness float64
		samples    int
		centre     int
		skin       int
	)
	stepX, stepY := b.Dx()/d.GridSize, b.Dy()/d.GridSize
	for gy := 0; gy < d.GridSize; gy++ {
		for gx := 0; gx < d.GridSize; gx++ {
			x, y := b.Min.X+gx*stepX+stepX/2, b.Min.Y+gy*stepY+stepY/2
			r, g, bl := rgb8(img.At(x, y).RGBA())
			brightness += 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)
			samples++

			// middle half of the frame in both directions
			if gx >= d.GridSize/4 && gx < 3*d.GridSize/4 && gy >= d.GridSize/4 && gy < 3*d.GridSize/4 {
				centre++
				if isSkin(r, g, bl) {
					skin++
				}
			}
		}
	}

	avg := brightness / float64(samples)
	if avg < d.MinBrightness || avg > d.MaxBrightness {
		return false, nil
	}
	return centre > 0 && float64(skin)/float64(centre) >= d.MinSkinRatio, nil
}

func rgb8(r, g, b, _ uint32) (int, int, int) {
	return int(r >> 8), int(g >> 8), int(b >> 8)
}

// isSkin is the classic RGB skin rule for daylight photos
func isSkin(r, g, b int) bool {
	maxC, minC := r, r
	for _, c := range []int{g, b} {
		if c > maxC {
			maxC = c
		}
		if c < minC {
			minC = c
		}
	}
	return r > 95 && g > 40 && b > 20 &&
		maxC-minC > 15 &&
		abs(r-g) > 15 && r > g && r > b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
