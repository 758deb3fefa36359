package demosaic

// Full-resolution X-Trans reconstruction. The 6x6 tile guarantees
// every color appears in every row and column, so a missing sample
// can always be estimated from its surrounding 6x6 neighborhood; we
// weight the same-color sites by inverse squared distance. Sites
// outside the image just drop out of the weighting.

import(
	"image"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

func XTrans(m *pix.Gray, cfa CFA, roi image.Rectangle) *pix.RGB {
	mos := m.Crop(roi)
	w, h := mos.W, mos.H
	out := pix.NewRGB(w, h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				own := cfa.ColorAt(x + roi.Min.X, y + roi.Min.Y)

				var v [3]float32
				v[own] = mos.At(x, y)

				for c:=0; c<3; c++ {
					if c == own {
						continue
					}
					var sum, wsum float32
					for dy:=-2; dy<4; dy++ {
						for dx:=-2; dx<4; dx++ {
							sx, sy := x+dx, y+dy
							if sx < 0 || sy < 0 || sx >= w || sy >= h {
								continue
							}
							if cfa.ColorAt(sx + roi.Min.X, sy + roi.Min.Y) != c {
								continue
							}
							wt := 1.0 / float32(dx*dx + dy*dy)
							sum += wt * mos.At(sx, sy)
							wsum += wt
						}
					}
					if wsum > 0 {
						v[c] = sum / wsum
					}
				}

				out.Set(x, y, v[0], v[1], v[2])
			}
		}
	})

	return out
}
