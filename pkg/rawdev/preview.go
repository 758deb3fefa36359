package rawdev

import(
	"image"

	"github.com/nfnt/resize"
)

// DevelopPreview runs a whole pipeline pass with the speed demosaic
// and shrinks the result to fit maxW x maxH. Good enough for a UI
// thumbnail while the quality render grinds away.
func (d *Developer)DevelopPreview(s *SensorImage, gen *Generation, maxW, maxH uint) (image.Image, error) {
	fast := *d
	fast.algorithm = Speed

	im, err := fast.Develop(s, gen)
	if err != nil {
		return nil, err
	}

	return resize.Thumbnail(maxW, maxH, im.Image(), resize.Bilinear), nil
}
