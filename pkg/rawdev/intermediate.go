package rawdev

// Intermediate is the pipeline's working buffer: a tagged variant
// over the three channel shapes. Exactly one of the three pointers is
// set. Stages switch on the shape, because the channel count decides
// which algorithms are even legal; the only stage allowed to change
// it is calibration (4 -> 3).

import(
	"fmt"
	"image"
	"image/color"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

type Intermediate struct {
	Gray *pix.Gray
	RGB  *pix.RGB
	Quad *pix.Quad
}

func (im Intermediate)Dim() (w, h int) {
	switch {
	case im.Gray != nil: return im.Gray.W, im.Gray.H
	case im.RGB  != nil: return im.RGB.W, im.RGB.H
	case im.Quad != nil: return im.Quad.W, im.Quad.H
	}
	return 0, 0
}

func (im Intermediate)Components() int {
	switch {
	case im.Gray != nil: return 1
	case im.RGB  != nil: return 3
	case im.Quad != nil: return 4
	}
	return 0
}

func (im Intermediate)Bounds() image.Rectangle {
	w, h := im.Dim()
	return image.Rect(0, 0, w, h)
}

func (im Intermediate)String() string {
	w, h := im.Dim()
	return fmt.Sprintf("Intermediate{%dx%dx%d}", w, h, im.Components())
}

func (im Intermediate)crop(r image.Rectangle) Intermediate {
	switch {
	case im.Gray != nil: return Intermediate{Gray: im.Gray.Crop(r)}
	case im.RGB  != nil: return Intermediate{RGB: im.RGB.Crop(r)}
	case im.Quad != nil: return Intermediate{Quad: im.Quad.Crop(r)}
	}
	return im
}

// Samples returns the flat sample buffer and the per-pixel count.
func (im Intermediate)Samples() ([]float32, int) {
	switch {
	case im.Gray != nil: return im.Gray.Pix, 1
	case im.RGB  != nil: return im.RGB.Pix, 3
	case im.Quad != nil: return im.Quad.Pix, 4
	}
	return nil, 0
}

// Image materializes the Intermediate as a 16-bit stdlib image, for
// consumers that want display-referred pixels rather than the raw
// float buffer.
func (im Intermediate)Image() image.Image {
	w, h := im.Dim()

	to16 := func(v float32) uint16 {
		if v <= 0 { return 0 }
		if v >= 1 { return 0xFFFF }
		return uint16(v*65535 + 0.5)
	}

	switch {
	case im.Gray != nil:
		img := image.NewGray16(image.Rect(0, 0, w, h))
		for y:=0; y<h; y++ {
			for x:=0; x<w; x++ {
				img.SetGray16(x, y, color.Gray16{to16(im.Gray.At(x, y))})
			}
		}
		return img

	case im.RGB != nil:
		img := image.NewRGBA64(image.Rect(0, 0, w, h))
		for y:=0; y<h; y++ {
			for x:=0; x<w; x++ {
				r, g, b := im.RGB.At(x, y)
				img.SetRGBA64(x, y, color.RGBA64{to16(r), to16(g), to16(b), 0xFFFF})
			}
		}
		return img

	case im.Quad != nil:
		// 4th sensor channel rides in the alpha slot, as raw data
		img := image.NewRGBA64(image.Rect(0, 0, w, h))
		for y:=0; y<h; y++ {
			for x:=0; x<w; x++ {
				v := im.Quad.At(x, y)
				img.SetRGBA64(x, y, color.RGBA64{to16(v[0]), to16(v[1]), to16(v[2]), to16(v[3])})
			}
		}
		return img
	}

	return nil
}
