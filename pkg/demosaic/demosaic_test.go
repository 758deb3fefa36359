package demosaic

import(
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

// flatMosaic builds a mosaic where every photosite of color c reads
// vals[c], regardless of position. Any sane demosaic should
// reconstruct a constant image from it.
func flatMosaic(w, h int, cfa CFA, vals []float32) *pix.Gray {
	m := pix.NewGray(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			m.Set(x, y, vals[cfa.ColorAt(x, y)])
		}
	}
	return m
}

func TestNewBayerCFA(t *testing.T) {
	cfa, err := NewBayerCFA("RGGB")
	require.NoError(t, err)
	assert.Equal(t, 0, cfa.ColorAt(0, 0))
	assert.Equal(t, 1, cfa.ColorAt(1, 0))
	assert.Equal(t, 1, cfa.ColorAt(0, 1))
	assert.Equal(t, 2, cfa.ColorAt(1, 1))
	assert.Equal(t, 3, cfa.UniqueColors())

	// Wraps in both directions
	assert.Equal(t, cfa.ColorAt(0, 0), cfa.ColorAt(2, 2))
	assert.Equal(t, cfa.ColorAt(1, 1), cfa.ColorAt(-1, -1))

	_, err = NewBayerCFA("RGGX")
	assert.Error(t, err)
	_, err = NewBayerCFA("RGG")
	assert.Error(t, err)
}

func TestBayerFlatField(t *testing.T) {
	cfa, _ := NewBayerCFA("RGGB")
	vals := []float32{0.8, 0.5, 0.2}
	m := flatMosaic(16, 12, cfa, vals)

	out := Bayer(m, cfa, m.Bounds())
	require.Equal(t, 16, out.W)
	require.Equal(t, 12, out.H)

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			r, g, b := out.At(x, y)
			assert.InDelta(t, vals[0], r, 1e-4, "red at %d,%d", x, y)
			assert.InDelta(t, vals[1], g, 1e-4, "green at %d,%d", x, y)
			assert.InDelta(t, vals[2], b, 1e-4, "blue at %d,%d", x, y)
		}
	}
}

func TestBayerRoiCrop(t *testing.T) {
	cfa, _ := NewBayerCFA("GBRG")
	m := flatMosaic(16, 16, cfa, []float32{1, 1, 1})

	out := Bayer(m, cfa, image.Rect(2, 4, 10, 12))
	assert.Equal(t, 8, out.W)
	assert.Equal(t, 8, out.H)
}

func TestSuperpixelRGB(t *testing.T) {
	cfa, _ := NewBayerCFA("RGGB")
	vals := []float32{0.9, 0.4, 0.1}
	m := flatMosaic(16, 12, cfa, vals)

	out := SuperpixelRGB(m, cfa, m.Bounds())
	require.Equal(t, 8, out.W)
	require.Equal(t, 6, out.H)

	r, g, b := out.At(3, 3)
	assert.InDelta(t, vals[0], r, 1e-5)
	assert.InDelta(t, vals[1], g, 1e-5)
	assert.InDelta(t, vals[2], b, 1e-5)
}

func TestXTransFlatField(t *testing.T) {
	cfa := NewXTransCFA()
	vals := []float32{0.7, 0.5, 0.3}
	m := flatMosaic(24, 18, cfa, vals)

	out := XTrans(m, cfa, m.Bounds())
	require.Equal(t, 24, out.W)
	require.Equal(t, 18, out.H)

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			r, g, b := out.At(x, y)
			assert.InDelta(t, vals[0], r, 1e-4, "red at %d,%d", x, y)
			assert.InDelta(t, vals[1], g, 1e-4, "green at %d,%d", x, y)
			assert.InDelta(t, vals[2], b, 1e-4, "blue at %d,%d", x, y)
		}
	}
}

func TestSuperpixelXTrans(t *testing.T) {
	cfa := NewXTransCFA()
	vals := []float32{0.7, 0.5, 0.3}
	m := flatMosaic(24, 18, cfa, vals)

	out := SuperpixelXTrans(m, cfa, m.Bounds())
	require.Equal(t, 12, out.W)
	require.Equal(t, 9, out.H)

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			r, g, b := out.At(x, y)
			assert.InDelta(t, vals[0], r, 1e-4)
			assert.InDelta(t, vals[1], g, 1e-4)
			assert.InDelta(t, vals[2], b, 1e-4)
		}
	}
}

func TestBilinear4(t *testing.T) {
	// A CMYG style 2x2 tile with four distinct channels
	cfa := CFA{Name:"CMYG", Width:2, Height:2, Pattern:[]int{0, 1, 2, 3}}
	vals := []float32{0.2, 0.4, 0.6, 0.8}
	m := flatMosaic(8, 8, cfa, vals)

	out := Bilinear4(m, cfa, m.Bounds())
	require.Equal(t, 8, out.W)
	require.Equal(t, 8, out.H)

	for y:=0; y<out.H; y++ {
		for x:=0; x<out.W; x++ {
			q := out.At(x, y)
			for c:=0; c<4; c++ {
				assert.InDelta(t, vals[c], q[c], 1e-4, "chan %d at %d,%d", c, x, y)
			}
		}
	}
}

func TestSuperpixel4(t *testing.T) {
	cfa := CFA{Name:"CMYG", Width:2, Height:2, Pattern:[]int{0, 1, 2, 3}}
	vals := []float32{0.2, 0.4, 0.6, 0.8}
	m := flatMosaic(8, 8, cfa, vals)

	out := Superpixel4(m, cfa, m.Bounds())
	require.Equal(t, 4, out.W)
	require.Equal(t, 4, out.H)

	q := out.At(1, 1)
	for c:=0; c<4; c++ {
		assert.InDelta(t, vals[c], q[c], 1e-5)
	}
}
