package rawdev

import(
	"bytes"
	"image/color"
	"testing"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

func TestWriteTIFFRoundTripRGB(t *testing.T) {
	p := pix.NewRGB(20, 10)
	for y:=0; y<10; y++ {
		for x:=0; x<20; x++ {
			p.Set(x, y, 0.5, 0.25, float32(x)/20)
		}
	}
	im := Intermediate{RGB: p}
	s := &SensorImage{Make:"Testo", Model:"T-1000"}

	var buf bytes.Buffer
	require.NoError(t, WriteTIFF(&buf, im, s))

	img, err := tiff.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 20, b.Dx())
	assert.Equal(t, 10, b.Dy())

	c := color.RGBA64Model.Convert(img.At(3, 7)).(color.RGBA64)
	assert.Equal(t, uint16(32768), c.R)
	assert.Equal(t, uint16(16384), c.G)
	assert.Equal(t, uint16(3*65535/20), c.B)
}

func TestWriteTIFFRoundTripGray(t *testing.T) {
	g := pix.NewGray(64, 48)
	for i := range g.Pix {
		g.Pix[i] = float32(i%100) / 100
	}
	im := Intermediate{Gray: g}

	var buf bytes.Buffer
	require.NoError(t, WriteTIFF(&buf, im, nil))

	img, err := tiff.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestWriteTIFFExif(t *testing.T) {
	p := pix.NewRGB(4, 4)
	im := Intermediate{RGB: p}
	s := &SensorImage{Make:"Testo", Model:"T-1000"}

	var buf bytes.Buffer
	require.NoError(t, WriteTIFF(&buf, im, s))

	ex, err := exif.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	tag, err := ex.Get(exif.Make)
	require.NoError(t, err)
	maker, err := tag.StringVal()
	require.NoError(t, err)
	assert.Equal(t, "Testo", maker)

	tag, err = ex.Get(exif.Model)
	require.NoError(t, err)
	model, err := tag.StringVal()
	require.NoError(t, err)
	assert.Equal(t, "T-1000", model)
}

func TestWriteTIFFEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteTIFF(&buf, Intermediate{}, nil))
}

func TestWriteTIFFManyStrips(t *testing.T) {
	// Tall enough that the encoder has to emit multiple strips
	g := pix.NewGray(256, 600)
	for i := range g.Pix {
		g.Pix[i] = float32(i&0xFF) / 255
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTIFF(&buf, Intermediate{Gray: g}, nil))

	img, err := tiff.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dy())

	c := color.Gray16Model.Convert(img.At(255, 0)).(color.Gray16)
	assert.Equal(t, uint16(0xFFFF), c.Y)
}

func TestLZWEncode(t *testing.T) {
	// A run the dictionary should chew down well below input size
	src := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)
	enc := lzwEncode(src)
	assert.Less(t, len(enc), len(src)/4)

	// Degenerate inputs behave
	assert.NotEmpty(t, lzwEncode([]byte{}))
	assert.NotEmpty(t, lzwEncode([]byte{42}))
}
