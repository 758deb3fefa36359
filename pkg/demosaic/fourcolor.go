package demosaic

// Four-color sensors (CMYG video tiles, Sony RGBE) keep their four
// channels through demosaic; the calibration matrix collapses them to
// RGB later. Quality path is a bilinear-style reconstruction: each
// missing channel is the inverse-distance weighted average of the
// same-color sites in the 3x3 neighborhood (every color appears at
// least once there for a 2x2 tile).

import(
	"image"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

func Bilinear4(m *pix.Gray, cfa CFA, roi image.Rectangle) *pix.Quad {
	mos := m.Crop(roi)
	w, h := mos.W, mos.H
	out := pix.NewQuad(w, h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				own := cfa.ColorAt(x + roi.Min.X, y + roi.Min.Y)

				var v [4]float32
				v[own] = mos.At(x, y)

				for c:=0; c<4; c++ {
					if c == own {
						continue
					}
					var sum, wsum float32
					for dy:=-1; dy<2; dy++ {
						for dx:=-1; dx<2; dx++ {
							if dx == 0 && dy == 0 {
								continue
							}
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

				out.Set(x, y, v)
			}
		}
	})

	return out
}
