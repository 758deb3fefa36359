package rawdev

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/go-rawdev/pkg/demosaic"
	"github.com/abworrall/go-rawdev/pkg/emath"
)

// identityMatrices is a camera whose response is exactly XYZ->sRGB, so
// calibration becomes a no-op and tests can reason about pixel values.
func identityMatrices() map[Illuminant][]float64 {
	m := make([]float64, 9)
	for i:=0; i<9; i++ {
		m[i] = emath.XYZToSRGB[i]
	}
	return map[Illuminant][]float64{IllumD65: m}
}

// flatSensor builds a Bayer mosaic where every photosite reads the
// same raw value.
func flatSensor(w, h int, raw float32) *SensorImage {
	cfa, _ := demosaic.NewBayerCFA("RGGB")
	data := make([]float32, w*h)
	for i := range data {
		data[i] = raw
	}
	return &SensorImage{
		Make: "Testo", Model: "T-1000",
		Width: w, Height: h, Components: 1,
		Data: data,
		CFA: cfa,
		WhiteLevels: [4]float32{65535, 65535, 65535, 65535},
		WBCoeffs: [4]float32{1, 1, 1, 1},
		ColorMatrices: identityMatrices(),
	}
}

func TestDevelopFlatField(t *testing.T) {
	d, err := NewDeveloper(Settings{Steps: []string{"demosaic", "calibrate"}})
	require.NoError(t, err)

	s := flatSensor(8, 8, 0.5)
	im, err := d.Develop(s, nil)
	require.NoError(t, err)
	require.NotNil(t, im.RGB)

	w, h := im.Dim()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)

	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			r, g, b := im.RGB.At(x, y)
			assert.InDelta(t, 0.5, r, 1e-4, "red at %d,%d", x, y)
			assert.InDelta(t, 0.5, g, 1e-4, "green at %d,%d", x, y)
			assert.InDelta(t, 0.5, b, 1e-4, "blue at %d,%d", x, y)
		}
	}
}

func TestDevelopRescale(t *testing.T) {
	d, err := NewDeveloper(Settings{Steps: []string{"rescale", "demosaic", "calibrate"}})
	require.NoError(t, err)

	// Raw samples at half the white level should develop to 0.5: the
	// rescale normalizes against the working ceiling, and highlight
	// recovery restores true white to 1.0.
	s := flatSensor(8, 8, 2148)
	for i := range s.BlackLevels {
		s.BlackLevels[i] = 100
		s.WhiteLevels[i] = 4196
	}

	im, err := d.Develop(s, nil)
	require.NoError(t, err)
	require.NotNil(t, im.RGB)

	r, g, b := im.RGB.At(4, 4)
	assert.InDelta(t, 0.5, r, 1e-3)
	assert.InDelta(t, 0.5, g, 1e-3)
	assert.InDelta(t, 0.5, b, 1e-3)
}

func TestDevelopDoesNotModifyInput(t *testing.T) {
	d, _ := NewDeveloper(Settings{}) // full default pipeline

	s := flatSensor(8, 8, 1000)
	s.BlackLevels = [4]float32{64, 64, 64, 64}
	s.WhiteLevels = [4]float32{4000, 4000, 4000, 4000}

	_, err := d.Develop(s, nil)
	require.NoError(t, err)

	assert.Equal(t, float32(1000), s.Data[17])
	assert.Equal(t, float32(4000), s.WhiteLevels[0])
}

func TestDevelopValidates(t *testing.T) {
	d, _ := NewDeveloper(Settings{})

	s := flatSensor(8, 8, 0.5)
	s.Components = 2
	_, err := d.Develop(s, nil)
	assert.Error(t, err)

	s = flatSensor(8, 8, 0.5)
	s.Data = s.Data[:10]
	_, err = d.Develop(s, nil)
	assert.Error(t, err)
}

func TestDevelopMissingD65(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"demosaic", "calibrate"}})

	s := flatSensor(8, 8, 0.5)
	s.ColorMatrices = map[Illuminant][]float64{IllumA: s.ColorMatrices[IllumD65]}

	_, err := d.Develop(s, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoD65Matrix)
}

func TestDevelopUnknownCFAPassesThrough(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"demosaic"}})

	s := flatSensor(8, 8, 0.3)
	// A two-color tile: not RGB, not 4-color; stays monochrome
	s.CFA = demosaic.CFA{Name:"weird", Width:2, Height:2, Pattern:[]int{0, 1, 1, 0}}

	im, err := d.Develop(s, nil)
	require.NoError(t, err)
	assert.NotNil(t, im.Gray)
}

func TestDevelopSpeedHalvesResolution(t *testing.T) {
	d, err := NewDeveloper(Settings{
		Steps: []string{"demosaic", "calibrate"},
		DemosaicAlgorithm: "speed",
	})
	require.NoError(t, err)

	im, err := d.Develop(flatSensor(16, 12, 0.5), nil)
	require.NoError(t, err)

	w, h := im.Dim()
	assert.Equal(t, 8, w)
	assert.Equal(t, 6, h)
}

func TestDevelopCancellation(t *testing.T) {
	gen := &Generation{}

	snap := snapshot(gen)
	assert.NoError(t, snap.stale())

	gen.Bump()
	assert.ErrorIs(t, snap.stale(), ErrCancelled)

	// A nil generation never cancels
	assert.NoError(t, snapshot(nil).stale())
}
