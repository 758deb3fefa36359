package rawdev

// SensorImage is what a format-specific raw decoder hands us: the
// mosaiced (or already multi-channel) sensor samples plus the
// calibration metadata needed to develop them. We never modify the
// caller's value - the pipeline takes a working copy, so one decode
// can be re-developed concurrently with different settings.

import(
	"fmt"
	"image"

	"github.com/abworrall/go-rawdev/pkg/demosaic"
)

// WhiteCeiling is the working numeric ceiling for sensor samples.
// Decoders deliver 16-bit data as float32, so full scale is 0xFFFF.
const WhiteCeiling = 65535.0

type Illuminant int

const (
	IllumUnknown Illuminant = iota
	IllumA
	IllumD50
	IllumD55
	IllumD65
	IllumD75
)

func (il Illuminant)String() string {
	switch il {
	case IllumA:   return "A"
	case IllumD50: return "D50"
	case IllumD55: return "D55"
	case IllumD65: return "D65"
	case IllumD75: return "D75"
	}
	return "unknown"
}

type SensorImage struct {
	Make, Model   string

	Width, Height int
	Components    int       // samples per pixel: 1 (mosaic/mono), 3, or 4
	Data          []float32 // row major, Components samples per pixel

	CFA           demosaic.CFA

	WhiteLevels   [4]float32 // per channel
	BlackLevels   [4]float32
	WBCoeffs      [4]float32 // as-shot white balance gains; NaN = unmeasured

	// XYZ->camera matrices by reference illuminant; each is 9 or 12
	// values, one row of 3 per camera channel.
	ColorMatrices map[Illuminant][]float64

	ActiveArea    image.Rectangle  // sensor area excluding the calibration border
	CropArea      *image.Rectangle // manufacturer-recommended visible crop, if any
}

func (s *SensorImage)Bounds() image.Rectangle { return image.Rect(0, 0, s.Width, s.Height) }

func (s *SensorImage)String() string {
	return fmt.Sprintf("SensorImage{%s %s, %dx%dx%d, %s}", s.Make, s.Model, s.Width, s.Height, s.Components, s.CFA)
}

func (s *SensorImage)Validate() error {
	switch s.Components {
	case 1, 3, 4:
	default:
		return fmt.Errorf("sensor has %d components per pixel, want 1, 3 or 4", s.Components)
	}
	if want := s.Width * s.Height * s.Components; len(s.Data) != want {
		return fmt.Errorf("sensor buffer has %d samples, want %d", len(s.Data), want)
	}
	return nil
}

// workingCopy clones the metadata (not the sample buffer, which the
// pipeline reads but never writes) and forces the white levels up to
// the working ceiling. That keeps super-whites - samples above the
// nominal white level - alive through rescaling so highlight recovery
// can fold them back in, instead of clipping them at normalization.
func (s *SensorImage)workingCopy() SensorImage {
	w := *s
	for i := range w.WhiteLevels {
		w.WhiteLevels[i] = WhiteCeiling
	}
	return w
}
