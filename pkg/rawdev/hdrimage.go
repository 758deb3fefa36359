package rawdev

import(
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
)

// LinearImage wraps a developed RGB intermediate as a floating point
// image, so HDR codecs and tone mappers can consume the pipeline
// output before gamma encoding. Implements the image.Image interface.
type LinearImage struct {
	im Intermediate
}

func NewLinearImage(im Intermediate) (LinearImage, error) {
	if im.RGB == nil {
		return LinearImage{}, fmt.Errorf("linear image needs a three channel intermediate, have %s", im)
	}
	return LinearImage{im}, nil
}

// Implement image.Image
func (li LinearImage)ColorModel() color.Model       { return hdrcolor.RGBModel }
func (li LinearImage)Bounds() image.Rectangle       { return li.im.Bounds() }
func (li LinearImage)At(x, y int) color.Color       { return li.HDRAt(x,y) }

// Implement hdr.Image
func (li LinearImage)HDRAt(x, y int) hdrcolor.Color {
	r, g, b := li.im.RGB.At(x, y)
	return hdrcolor.RGB{R:float64(r), G:float64(g), B:float64(b)}
}
func (li LinearImage)Size() int                     { return li.Bounds().Dx() * li.Bounds().Dy() }

// WriteToHDR outputs a Radiance HDR image. You can load this into
// photoshop or other HDR tools.
func (li LinearImage)WriteToHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("LinearImage.WriteToHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, li)
	}
}
