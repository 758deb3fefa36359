package rawdev

// The development pipeline. Step selection mirrors the sensor
// geometry: a mosaic goes through pattern-keyed demosaic into three
// (or four) channels, calibration collapses sensor color into linear
// sRGB, highlight recovery folds super-whites back under the display
// white point, then crop and tone encoding finish the job.

import(
	"fmt"
	"image"
	"log"
	"math"

	"github.com/abworrall/go-rawdev/pkg/demosaic"
	"github.com/abworrall/go-rawdev/pkg/denoise"
	"github.com/abworrall/go-rawdev/pkg/pix"
)

// Develop runs the configured pipeline steps over the sensor data and
// returns the developed buffer. The input SensorImage is never
// modified. A nil Generation disables cancellation. Any panic from a
// corrupt sensor buffer comes back as a normal error - one bad file
// must not take down a batch.
func (d *Developer)Develop(sensor *SensorImage, gen *Generation) (result Intermediate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("development panic: %v", r)
		}
	}()

	if err := sensor.Validate(); err != nil {
		return Intermediate{}, err
	}

	snap := snapshot(gen)

	working := *sensor
	if d.steps[StepRescale] {
		working = sensor.workingCopy()
	}

	im := d.buildIntermediate(&working)
	if err := snap.stale(); err != nil {
		return Intermediate{}, err
	}

	if d.steps[StepDemosaic] {
		im = d.demosaicStep(im, &working)
		if err := snap.stale(); err != nil {
			return Intermediate{}, err
		}
	}

	if d.steps[StepCalibrate] {
		if im, err = d.calibrateStep(im, &working); err != nil {
			return Intermediate{}, err
		}
		if err := snap.stale(); err != nil {
			return Intermediate{}, err
		}
	}

	if d.steps[StepRescale] {
		d.recoverHighlights(im, sensor.BlackLevels[0], sensor.WhiteLevels[0])
	}

	if err := snap.stale(); err != nil {
		return Intermediate{}, err
	}

	if d.steps[StepCropDefault] {
		im = d.cropStep(im, &working)
	}

	if d.steps[StepToneEncode] {
		toneEncode(im)
	}

	if d.denoiseChroma && im.RGB != nil {
		im = Intermediate{RGB: denoise.Chroma(im.RGB)}
	}

	return im, nil
}

// buildIntermediate shapes the flat decoder buffer, normalizing
// samples to [0,1] against the (working copy's) levels when the
// rescale step is on.
func (d *Developer)buildIntermediate(s *SensorImage) Intermediate {
	n := s.Width * s.Height * s.Components
	data := make([]float32, n)
	copy(data, s.Data)

	if d.steps[StepRescale] {
		pix.ParallelRows(s.Height, func(y0, y1 int) {
			for y:=y0; y<y1; y++ {
				for x:=0; x<s.Width; x++ {
					for c:=0; c<s.Components; c++ {
						i := (y*s.Width + x) * s.Components + c
						span := s.WhiteLevels[c] - s.BlackLevels[c]
						if span < 1 {
							span = 1 // degenerate metadata; don't divide by ~0
						}
						data[i] = (data[i] - s.BlackLevels[c]) / span
					}
				}
			}
		})
	}

	switch s.Components {
	case 3:
		return Intermediate{RGB: &pix.RGB{W:s.Width, H:s.Height, Pix:data}}
	case 4:
		return Intermediate{Quad: &pix.Quad{W:s.Width, H:s.Height, Pix:data}}
	}
	return Intermediate{Gray: &pix.Gray{W:s.Width, H:s.Height, Pix:data}}
}

// demosaicStep applies the selection policy: 6x6 RGB tiles are
// X-Trans, other RGB tiles are Bayer, 4-color tiles keep their four
// channels, anything else passes through as monochrome (degraded, not
// fatal).
func (d *Developer)demosaicStep(im Intermediate, s *SensorImage) Intermediate {
	if im.Gray == nil || len(s.CFA.Pattern) == 0 {
		return im // already multi-channel, or a true monochrome sensor
	}

	roi := im.Gray.Bounds()
	if d.steps[StepCropActiveArea] && !s.ActiveArea.Empty() {
		roi = roi.Intersect(s.ActiveArea)
	}

	cfa := s.CFA

	switch {
	case cfa.IsRGB && cfa.Width == 6 && cfa.Height == 6:
		log.Printf("demosaic %s %s: X-Trans pattern, algorithm %v", s.Make, s.Model, d.algorithm)
		if d.algorithm == Speed {
			return Intermediate{RGB: demosaic.SuperpixelXTrans(im.Gray, cfa, roi)}
		}
		return Intermediate{RGB: demosaic.XTrans(im.Gray, cfa, roi)}

	case cfa.IsRGB:
		log.Printf("demosaic %s %s: Bayer-like pattern %s, algorithm %v", s.Make, s.Model, cfa.Name, d.algorithm)
		if d.algorithm == Speed {
			return Intermediate{RGB: demosaic.SuperpixelRGB(im.Gray, cfa, roi)}
		}
		return Intermediate{RGB: demosaic.Bayer(im.Gray, cfa, roi)}

	case cfa.UniqueColors() == 4:
		log.Printf("demosaic %s %s: 4-color pattern %s, algorithm %v", s.Make, s.Model, cfa.Name, d.algorithm)
		if d.algorithm == Speed {
			return Intermediate{Quad: demosaic.Superpixel4(im.Gray, cfa, roi)}
		}
		return Intermediate{Quad: demosaic.Bilinear4(im.Gray, cfa, roi)}
	}

	log.Printf("WARN: demosaic %s %s: unsupported CFA pattern '%s', passing through as monochrome", s.Make, s.Model, cfa.Name)
	return im
}

// cropStep maps the manufacturer's default crop through whatever the
// earlier stages did to the geometry, then applies it if it actually
// changes anything.
func (d *Developer)cropStep(im Intermediate, s *SensorImage) Intermediate {
	if s.CropArea == nil {
		return im
	}
	crop := *s.CropArea

	if d.steps[StepDemosaic] && d.steps[StepCropActiveArea] && !s.ActiveArea.Empty() {
		// demosaic worked in active-area coords; re-base the crop
		crop = crop.Intersect(s.ActiveArea).Sub(s.ActiveArea.Min)
	}

	originalWidth := s.ActiveArea.Dx()
	if originalWidth == 0 {
		originalWidth = s.Width
	}
	w, h := im.Dim()
	if originalWidth > 0 {
		scale := float64(w) / float64(originalWidth)
		if math.Abs(scale - 1.0) > 1e-6 {
			crop = pix.ScaleRect(crop, scale) // track resolution-halving demosaic
		}
	}

	crop = crop.Intersect(image.Rect(0, 0, w, h))
	if crop.Empty() || (crop.Dx() == w && crop.Dy() == h) {
		return im
	}

	return im.crop(crop)
}
