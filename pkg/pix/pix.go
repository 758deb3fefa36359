package pix

// Dense row-major float32 sample buffers, in the three channel shapes
// the development pipeline works in. A Gray holds one sample per
// pixel (the undemosaiced sensor mosaic, or a monochrome sensor), an
// RGB holds three, a Quad holds four (CMYG/RGBE style sensors).

import(
	"image"
)

type Gray struct {
	W, H int
	Pix  []float32
}

type RGB struct {
	W, H int
	Pix  []float32 // 3 samples per pixel
}

type Quad struct {
	W, H int
	Pix  []float32 // 4 samples per pixel
}

func NewGray(w, h int) *Gray { return &Gray{W:w, H:h, Pix:make([]float32, w*h)} }
func NewRGB(w, h int) *RGB   { return &RGB{W:w, H:h, Pix:make([]float32, w*h*3)} }
func NewQuad(w, h int) *Quad { return &Quad{W:w, H:h, Pix:make([]float32, w*h*4)} }

func (g *Gray)At(x, y int) float32        { return g.Pix[y*g.W + x] }
func (g *Gray)Set(x, y int, v float32)    { g.Pix[y*g.W + x] = v }
func (g *Gray)Bounds() image.Rectangle    { return image.Rect(0, 0, g.W, g.H) }

func (p *RGB)At(x, y int) (r, g, b float32) {
	i := (y*p.W + x) * 3
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}
func (p *RGB)Set(x, y int, r, g, b float32) {
	i := (y*p.W + x) * 3
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = r, g, b
}
func (p *RGB)Bounds() image.Rectangle { return image.Rect(0, 0, p.W, p.H) }

func (q *Quad)At(x, y int) [4]float32 {
	i := (y*q.W + x) * 4
	return [4]float32{q.Pix[i], q.Pix[i+1], q.Pix[i+2], q.Pix[i+3]}
}
func (q *Quad)Set(x, y int, v [4]float32) {
	i := (y*q.W + x) * 4
	q.Pix[i], q.Pix[i+1], q.Pix[i+2], q.Pix[i+3] = v[0], v[1], v[2], v[3]
}
func (q *Quad)Bounds() image.Rectangle { return image.Rect(0, 0, q.W, q.H) }

// Crop copies out the samples under `r`, which must lie within bounds.
func (g *Gray)Crop(r image.Rectangle) *Gray {
	out := NewGray(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(out.Pix[(y-r.Min.Y)*out.W:], g.Pix[y*g.W+r.Min.X : y*g.W+r.Max.X])
	}
	return out
}

func (p *RGB)Crop(r image.Rectangle) *RGB {
	out := NewRGB(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(out.Pix[(y-r.Min.Y)*out.W*3:], p.Pix[(y*p.W+r.Min.X)*3 : (y*p.W+r.Max.X)*3])
	}
	return out
}

func (q *Quad)Crop(r image.Rectangle) *Quad {
	out := NewQuad(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(out.Pix[(y-r.Min.Y)*out.W*4:], q.Pix[(y*q.W+r.Min.X)*4 : (y*q.W+r.Max.X)*4])
	}
	return out
}

// ScaleRect scales a rectangle about the origin, e.g. to track a crop
// window through a resolution-halving demosaic.
func ScaleRect(r image.Rectangle, f float64) image.Rectangle {
	return image.Rect(
		int(float64(r.Min.X) * f),
		int(float64(r.Min.Y) * f),
		int(float64(r.Max.X) * f),
		int(float64(r.Max.Y) * f))
}
