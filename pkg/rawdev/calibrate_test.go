package rawdev

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

func threeChannelSensor(w, h int) *SensorImage {
	return &SensorImage{
		Width: w, Height: h, Components: 3,
		Data: make([]float32, w*h*3),
		WBCoeffs: [4]float32{1, 1, 1, 1},
		ColorMatrices: identityMatrices(),
	}
}

func TestCalibrateIdentity(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"calibrate"}})

	s := threeChannelSensor(4, 4)
	for i:=0; i<len(s.Data); i+=3 {
		s.Data[i+0] = 0.8
		s.Data[i+1] = 0.4
		s.Data[i+2] = 0.1
	}

	im, err := d.Develop(s, nil)
	require.NoError(t, err)
	require.NotNil(t, im.RGB)

	r, g, b := im.RGB.At(2, 2)
	assert.InDelta(t, 0.8, r, 1e-5)
	assert.InDelta(t, 0.4, g, 1e-5)
	assert.InDelta(t, 0.1, b, 1e-5)
}

func TestCalibrateWhiteBalance(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"whitebalance", "calibrate"}})

	s := threeChannelSensor(2, 2)
	for i:=0; i<len(s.Data); i+=3 {
		s.Data[i+0] = 0.25
		s.Data[i+1] = 0.5
		s.Data[i+2] = 0.5
	}
	s.WBCoeffs = [4]float32{2, 1, 1, 1} // doubles red

	im, err := d.Develop(s, nil)
	require.NoError(t, err)

	r, g, b := im.RGB.At(0, 0)
	assert.InDelta(t, 0.5, r, 1e-5)
	assert.InDelta(t, 0.5, g, 1e-5)
	assert.InDelta(t, 0.5, b, 1e-5)
}

func TestCalibrateNaNCoeffs(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"whitebalance", "calibrate"}})

	s := threeChannelSensor(2, 2)
	for i := range s.Data {
		s.Data[i] = 0.5
	}
	nan := float32(math.NaN())
	s.WBCoeffs = [4]float32{nan, nan, nan, nan} // unmeasured; treated as 1.0

	im, err := d.Develop(s, nil)
	require.NoError(t, err)

	r, _, _ := im.RGB.At(1, 1)
	assert.InDelta(t, 0.5, r, 1e-5)
	assert.False(t, math.IsNaN(float64(r)))
}

func TestCalibrateCollapsesFourChannels(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"calibrate"}})

	// Camera rows: sRGB response plus a duplicate green channel
	m9 := identityMatrices()[IllumD65]
	m12 := append(append([]float64{}, m9...), m9[3], m9[4], m9[5])

	s := &SensorImage{
		Width: 2, Height: 2, Components: 4,
		Data: make([]float32, 2*2*4),
		WBCoeffs: [4]float32{1, 1, 1, 1},
		ColorMatrices: map[Illuminant][]float64{IllumD65: m12},
	}
	for i:=0; i<len(s.Data); i+=4 {
		s.Data[i+0] = 0.3
		s.Data[i+1] = 0.6
		s.Data[i+2] = 0.2
		s.Data[i+3] = 0.6
	}

	im, err := d.Develop(s, nil)
	require.NoError(t, err)
	require.NotNil(t, im.RGB)
	assert.Equal(t, 3, im.Components())

	r, g, b := im.RGB.At(1, 0)
	assert.InDelta(t, 0.3, r, 1e-5)
	assert.InDelta(t, 0.6, g, 1e-5)
	assert.InDelta(t, 0.2, b, 1e-5)
}

func TestCalibrateBadMatrixLength(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"calibrate"}})

	s := threeChannelSensor(2, 2)
	s.ColorMatrices = map[Illuminant][]float64{IllumD65: {1, 2, 3}}

	_, err := d.Develop(s, nil)
	assert.Error(t, err)
}

func TestCalibrateSkipsGray(t *testing.T) {
	d, _ := NewDeveloper(Settings{Steps: []string{"calibrate"}})

	s := &SensorImage{
		Width: 2, Height: 2, Components: 1,
		Data: []float32{0.1, 0.2, 0.3, 0.4},
	}

	im, err := d.Develop(s, nil)
	require.NoError(t, err)
	require.NotNil(t, im.Gray)
	assert.Equal(t, float32(0.3), im.Gray.At(0, 1))
}

func TestUnflattenMatrix(t *testing.T) {
	rows, err := unflattenMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 3)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{4, 5, 6}, rows[1])

	_, err = unflattenMatrix([]float64{1, 2, 3}, 3)
	assert.Error(t, err)
}

func TestIntermediateShapes(t *testing.T) {
	im := Intermediate{RGB: pix.NewRGB(3, 2)}
	assert.Equal(t, 3, im.Components())
	w, h := im.Dim()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)

	data, spp := im.Samples()
	assert.Equal(t, 18, len(data))
	assert.Equal(t, 3, spp)
}
