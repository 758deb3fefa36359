package demosaic

// Superpixel binning: each 2x2 block of photosites collapses into one
// output pixel, averaging the samples per color. Quarter the pixels,
// but a single pass with no interpolation artifacts - the right trade
// for thumbnails and previews.

import(
	"image"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

// SuperpixelRGB is the speed path for Bayer mosaics (and any other
// RGB tile). Output is half resolution in each axis.
func SuperpixelRGB(m *pix.Gray, cfa CFA, roi image.Rectangle) *pix.RGB {
	mos := m.Crop(roi)
	w, h := mos.W/2, mos.H/2
	out := pix.NewRGB(w, h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				var sum [3]float32
				var n   [3]int
				for dy:=0; dy<2; dy++ {
					for dx:=0; dx<2; dx++ {
						sx, sy := 2*x+dx, 2*y+dy
						c := cfa.ColorAt(sx + roi.Min.X, sy + roi.Min.Y)
						sum[c] += mos.At(sx, sy)
						n[c]++
					}
				}
				for c:=0; c<3; c++ {
					if n[c] > 0 {
						sum[c] /= float32(n[c])
					}
				}
				out.Set(x, y, sum[0], sum[1], sum[2])
			}
		}
	})

	return out
}

// SuperpixelXTrans is the speed path for 6x6 X-Trans mosaics. A 2x2
// block does not always contain red and blue, so missing colors fall
// back to the surrounding 4x4.
func SuperpixelXTrans(m *pix.Gray, cfa CFA, roi image.Rectangle) *pix.RGB {
	mos := m.Crop(roi)
	w, h := mos.W/2, mos.H/2
	out := pix.NewRGB(w, h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				sum, n := binBlock(mos, cfa, roi, 2*x, 2*y, 0, 2)
				for c:=0; c<3; c++ {
					if n[c] == 0 {
						// widen to the 4x4 around the block
						s2, n2 := binBlock(mos, cfa, roi, 2*x, 2*y, -1, 3)
						if n2[c] > 0 {
							sum[c], n[c] = s2[c], n2[c]
						}
					}
				}
				var v [3]float32
				for c:=0; c<3; c++ {
					if n[c] > 0 {
						v[c] = sum[c] / float32(n[c])
					}
				}
				out.Set(x, y, v[0], v[1], v[2])
			}
		}
	})

	return out
}

func binBlock(mos *pix.Gray, cfa CFA, roi image.Rectangle, x, y, lo, hi int) (sum [3]float32, n [3]int) {
	for dy:=lo; dy<hi; dy++ {
		for dx:=lo; dx<hi; dx++ {
			sx, sy := x+dx, y+dy
			if sx < 0 || sy < 0 || sx >= mos.W || sy >= mos.H {
				continue
			}
			c := cfa.ColorAt(sx + roi.Min.X, sy + roi.Min.Y)
			sum[c] += mos.At(sx, sy)
			n[c]++
		}
	}
	return
}

// Superpixel4 is the speed path for four-color tiles: each 2x2 block
// becomes one FourColor pixel, channel per color index.
func Superpixel4(m *pix.Gray, cfa CFA, roi image.Rectangle) *pix.Quad {
	mos := m.Crop(roi)
	w, h := mos.W/2, mos.H/2
	out := pix.NewQuad(w, h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				var sum [4]float32
				var n   [4]int
				for dy:=0; dy<2; dy++ {
					for dx:=0; dx<2; dx++ {
						sx, sy := 2*x+dx, 2*y+dy
						c := cfa.ColorAt(sx + roi.Min.X, sy + roi.Min.Y)
						sum[c] += mos.At(sx, sy)
						n[c]++
					}
				}
				for c:=0; c<4; c++ {
					if n[c] > 0 {
						sum[c] /= float32(n[c])
					}
				}
				out.Set(x, y, sum)
			}
		}
	})

	return out
}
