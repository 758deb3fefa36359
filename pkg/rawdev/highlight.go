package rawdev

// Highlight recovery. Rescaling against the forced white ceiling left
// every sample in [0,1] with true sensor white somewhere below 1; we
// first scale so true white lands on 1.0, leaving genuine super-white
// samples above it. Then any pixel over the display white point gets
// its spread above the channel minimum compressed and rescaled back
// to its original maximum - brightness survives, and saturated
// highlights slide toward neutral instead of clipping per channel and
// shifting hue.

import(
	"github.com/abworrall/go-rawdev/pkg/pix"
)

// The compression point: how far above display white a pixel maximum
// can sit before its chroma spread is fully collapsed. Tunable, not a
// law of nature.
const defaultCompressionPoint = 2.2

func (d *Developer)recoverHighlights(im Intermediate, origBlack, origWhite float32) {
	span := origWhite - origBlack
	if span < 1 {
		span = 1 // degenerate metadata
	}
	factor := (WhiteCeiling - origBlack) / span

	switch {
	case im.RGB != nil:
		compressRGB(im.RGB, factor, d.compressionPoint)
	case im.Gray != nil:
		rescaleLinear(im.Gray.Pix, im.Gray.H, len(im.Gray.Pix)/im.Gray.H, factor)
	case im.Quad != nil:
		// no per-channel hue to preserve in 4-channel sensor space
		rescaleLinear(im.Quad.Pix, im.Quad.H, len(im.Quad.Pix)/im.Quad.H, factor)
	}
}

func compressRGB(p *pix.RGB, factor, compressionPoint float32) {
	pix.ParallelRows(p.H, func(y0, y1 int) {
		for i:=y0*p.W*3; i<y1*p.W*3; i+=3 {
			r := max32(p.Pix[i+0] * factor, 0)
			g := max32(p.Pix[i+1] * factor, 0)
			b := max32(p.Pix[i+2] * factor, 0)

			maxC := max32(r, max32(g, b))
			if maxC > 1.0 {
				minC := min32(r, min32(g, b))

				cf := clamp01(1 - (maxC-1)/(compressionPoint-1))
				cr := minC + (r-minC)*cf
				cg := minC + (g-minC)*cf
				cb := minC + (b-minC)*cf

				cMax := max32(cr, max32(cg, cb))
				if cMax > 1e-6 {
					// restore the pre-compression maximum
					rescale := maxC / cMax
					r, g, b = cr*rescale, cg*rescale, cb*rescale
				} else {
					r, g, b = maxC, maxC, maxC
				}
			}

			p.Pix[i+0] = clamp01(r)
			p.Pix[i+1] = clamp01(g)
			p.Pix[i+2] = clamp01(b)
		}
	})
}

func rescaleLinear(data []float32, h, perRow int, factor float32) {
	pix.ParallelRows(h, func(y0, y1 int) {
		for i:=y0*perRow; i<y1*perRow; i++ {
			data[i] = clamp01(data[i] * factor)
		}
	})
}

func max32(a, b float32) float32 { if a > b { return a }; return b }
func min32(a, b float32) float32 { if a < b { return a }; return b }

func clamp01(v float32) float32 {
	if v < 0 { return 0 }
	if v > 1 { return 1 }
	return v
}
