package emath

// Builds the camera-native -> linear sRGB transform out of the
// XYZ -> camera matrix that raw decoders hand us. Same recipe as
// dcraw: compose with sRGB->XYZ, normalize each camera row so a
// white-balanced neutral stays neutral, then pseudo-invert.

import(
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// CamToRGB holds the resulting 3 x nCh matrix. For a 3-color camera
// only the first 3 columns are meaningful.
type CamToRGB struct {
	Channels int
	M        [3][4]float64
}

func (c CamToRGB)Apply(cam [4]float64) Vec3 {
	var out Vec3
	for i:=0; i<3; i++ {
		for ch:=0; ch<c.Channels; ch++ {
			out[i] += c.M[i][ch] * cam[ch]
		}
	}
	return out
}

// NewCamToRGB takes the XYZ->camera rows (one row of 3 per camera
// channel, 3 or 4 rows) and produces the camera->sRGB projection.
func NewCamToRGB(xyzToCam [][3]float64) (CamToRGB, error) {
	nCh := len(xyzToCam)
	if nCh != 3 && nCh != 4 {
		return CamToRGB{}, fmt.Errorf("camera matrix has %d rows, want 3 or 4", nCh)
	}

	// rgbToCam = xyzToCam * SRGBToXYZ, row-normalized to sum 1
	rgbToCam := mat.NewDense(nCh, 3, nil)
	for i:=0; i<nCh; i++ {
		sum := 0.0
		row := [3]float64{}
		for j:=0; j<3; j++ {
			for k:=0; k<3; k++ {
				row[j] += xyzToCam[i][k] * SRGBToXYZ[3*k+j]
			}
			sum += row[j]
		}
		if sum == 0 {
			return CamToRGB{}, fmt.Errorf("camera matrix row %d sums to zero", i)
		}
		for j:=0; j<3; j++ {
			rgbToCam.Set(i, j, row[j]/sum)
		}
	}

	// camToRGB = pinv(rgbToCam) = (AtA)^-1 At
	var ata, inv, pinv mat.Dense
	ata.Mul(rgbToCam.T(), rgbToCam)
	if err := inv.Inverse(&ata); err != nil {
		return CamToRGB{}, fmt.Errorf("camera matrix is singular: %v", err)
	}
	pinv.Mul(&inv, rgbToCam.T())

	out := CamToRGB{Channels: nCh}
	for i:=0; i<3; i++ {
		for ch:=0; ch<nCh; ch++ {
			out.M[i][ch] = pinv.At(i, ch)
		}
	}
	return out, nil
}
