package lenscal

// Lens calibration data, as parsed out of a lensfun-style database by
// an external loader. One Calibration holds everything published for
// a single lens: distortion, transverse chromatic aberration and
// vignetting entries sampled at various focal lengths (and, for
// vignetting, apertures and focus distances). Resolve interpolates
// them for the shooting parameters of one exposure.

import(
	"fmt"
)

type DistortionModel int

const (
	ModelPoly DistortionModel = iota // k1, k2, k3 polynomial
	ModelPTLens                      // ptlens a, b, c; rides in the same slots
)

func (m DistortionModel)String() string {
	if m == ModelPTLens {
		return "ptlens"
	}
	return "poly"
}

// Distortion coefficients at one focal length. For ModelPTLens the
// K1/K2/K3 slots carry the ptlens a/b/c terms.
type Distortion struct {
	Focal      float32
	Model      DistortionModel
	K1, K2, K3 float32
}

// TCA scale factors at one focal length.
type TCA struct {
	Focal  float32
	VR, VB float32 // red/blue lateral magnification relative to green
}

// Vignetting falloff terms at one (focal, aperture, distance) point.
type Vignetting struct {
	Focal      float32
	Aperture   float32
	Distance   float32
	K1, K2, K3 float32
}

type Calibration struct {
	Maker, Model string
	Distortions  []Distortion
	TCAs         []TCA
	Vignettings  []Vignetting
}

func (c *Calibration)String() string {
	return fmt.Sprintf("Calibration{%s %s: %d dist, %d tca, %d vig}",
		c.Maker, c.Model, len(c.Distortions), len(c.TCAs), len(c.Vignettings))
}

// DistortionParams is the resolved per-shot correction set, ready for
// a downstream geometric warp. Every category defaults to neutral: a
// lens with no published calibration is a normal case, not an error.
type DistortionParams struct {
	Model            DistortionModel
	K1, K2, K3       float64
	TCARed, TCABlue  float64
	VigK1, VigK2, VigK3 float64
}

func NeutralParams() DistortionParams {
	return DistortionParams{TCARed: 1.0, TCABlue: 1.0}
}

const(
	// Assumed when the caller has no aperture/distance to offer;
	// vignetting tables are always aperture- and distance-dependent.
	DefaultAperture = 3.5
	DefaultDistance = 1000.0

	focalEpsilon = 1e-5
)

// Resolve interpolates the calibration for the given shooting
// parameters. Pass aperture/distance <= 0 to use the defaults.
func (c *Calibration)Resolve(focal, aperture, distance float32) DistortionParams {
	if aperture <= 0 {
		aperture = DefaultAperture
	}
	if distance <= 0 {
		distance = DefaultDistance
	}

	p := NeutralParams()
	c.resolveDistortion(focal, &p)
	c.resolveTCA(focal, &p)
	c.resolveVignetting(focal, aperture, distance, &p)
	return p
}
