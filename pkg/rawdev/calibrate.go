package rawdev

// Color calibration: white balance gains, then the camera matrix,
// collapsing sensor color into 3-channel linear sRGB. This is the
// only stage allowed to change the channel count (4 -> 3).

import(
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/abworrall/go-rawdev/pkg/emath"
	"github.com/abworrall/go-rawdev/pkg/pix"
)

// ErrNoD65Matrix: we fix calibration on the D65 entry of the camera's
// matrix set; without it there is nothing sound to calibrate with.
var ErrNoD65Matrix = errors.New("Color matrix for D65 illuminant not found")

func (d *Developer)calibrateStep(im Intermediate, s *SensorImage) (Intermediate, error) {
	if im.Gray != nil {
		return im, nil // nothing to calibrate in a single channel
	}

	wb := s.WBCoeffs
	for i := range wb {
		if math32.IsNaN(wb[i]) {
			wb[i] = 1.0 // decoders report unmeasured channels as NaN
		}
	}
	if !d.steps[StepWhiteBalance] {
		wb = [4]float32{1, 1, 1, 1}
	}

	flat, exists := s.ColorMatrices[IllumD65]
	if !exists {
		return Intermediate{}, ErrNoD65Matrix
	}

	xyzToCam, err := unflattenMatrix(flat, im.Components())
	if err != nil {
		return Intermediate{}, err
	}

	camToRGB, err := emath.NewCamToRGB(xyzToCam)
	if err != nil {
		return Intermediate{}, fmt.Errorf("calibration: %v", err)
	}

	switch {
	case im.RGB != nil:
		return Intermediate{RGB: calibrate3(im.RGB, wb, camToRGB)}, nil
	case im.Quad != nil:
		return Intermediate{RGB: calibrate4(im.Quad, wb, camToRGB)}, nil
	}
	return im, nil
}

func unflattenMatrix(flat []float64, channels int) ([][3]float64, error) {
	if len(flat) != channels*3 {
		return nil, fmt.Errorf("color matrix has %d values, want %d for a %d-channel sensor", len(flat), channels*3, channels)
	}
	rows := make([][3]float64, channels)
	for i:=0; i<channels; i++ {
		rows[i] = [3]float64{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return rows, nil
}

func calibrate3(in *pix.RGB, wb [4]float32, m emath.CamToRGB) *pix.RGB {
	out := pix.NewRGB(in.W, in.H)

	pix.ParallelRows(in.H, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<in.W; x++ {
				r, g, b := in.At(x, y)
				cam := [4]float64{
					float64(r * wb[0]),
					float64(g * wb[1]),
					float64(b * wb[2]),
				}
				rgb := m.Apply(cam)
				out.Set(x, y, float32(rgb[0]), float32(rgb[1]), float32(rgb[2]))
			}
		}
	})

	return out
}

func calibrate4(in *pix.Quad, wb [4]float32, m emath.CamToRGB) *pix.RGB {
	out := pix.NewRGB(in.W, in.H)

	pix.ParallelRows(in.H, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<in.W; x++ {
				v := in.At(x, y)
				cam := [4]float64{
					float64(v[0] * wb[0]),
					float64(v[1] * wb[1]),
					float64(v[2] * wb[2]),
					float64(v[3] * wb[3]),
				}
				rgb := m.Apply(cam)
				out.Set(x, y, float32(rgb[0]), float32(rgb[1]), float32(rgb[2]))
			}
		}
	})

	return out
}
