package denoise

// Edge-aware chroma denoise. The image is split into broadcast luma
// plus two chroma planes; each pixel's chroma is re-estimated as a
// weighted average over a sparse neighbor set, where neighbors with
// similar luma and smaller spatial offset count for more. Luma is
// never touched, so detail survives; and the filtered chroma is never
// allowed to grow past the original magnitude, so the filter can only
// desaturate noise, never invent color.

import(
	"github.com/chewxy/math32"

	"github.com/abworrall/go-rawdev/pkg/pix"
)

// Sparse sampling offsets, per axis: a 3x3-style tap pattern spread
// over an 8-pixel span instead of a dense window, which buys filter
// radius without the compute of a real 9x9.
var taps = [3]int{-5, -1, 3}

const(
	lumaSensitivity = 14.0 // how hard a luma difference suppresses a neighbor
	spatialScale    = 0.02 // penalty per squared pixel of offset
)

// Chroma denoises the chroma of an RGB image, returning a new buffer.
// Rows only read the shared source planes, so they run in parallel.
func Chroma(in *pix.RGB) *pix.RGB {
	w, h := in.W, in.H

	// Luma + chroma source planes, read-only once built
	luma := make([]float32, w*h)
	cr   := make([]float32, w*h)
	cb   := make([]float32, w*h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				r, g, b := in.At(x, y)
				i := y*w + x
				luma[i] = 0.299*r + 0.587*g + 0.114*b
				cr[i] = r - luma[i]
				cb[i] = b - luma[i]
			}
		}
	})

	out := pix.NewRGB(w, h)

	pix.ParallelRows(h, func(y0, y1 int) {
		for y:=y0; y<y1; y++ {
			for x:=0; x<w; x++ {
				i := y*w + x
				centerLuma := luma[i]

				var sumCr, sumCb, sumW float32
				for _, dy := range taps {
					for _, dx := range taps {
						nx, ny := x+dx, y+dy
						if nx < 0  { nx = 0 }
						if nx >= w { nx = w-1 }
						if ny < 0  { ny = 0 }
						if ny >= h { ny = h-1 }
						n := ny*w + nx

						dl := lumaSensitivity * math32.Abs(luma[n] - centerLuma)
						wt := 1.0 / (1.0 + dl*dl + spatialScale*float32(dx*dx + dy*dy))

						sumCr += wt * cr[n]
						sumCb += wt * cb[n]
						sumW  += wt
					}
				}

				fCr, fCb := sumCr/sumW, sumCb/sumW

				// never amplify: cap the filtered chroma magnitude at the original's
				origMag := math32.Sqrt(cr[i]*cr[i] + cb[i]*cb[i])
				fMag := math32.Sqrt(fCr*fCr + fCb*fCb)
				if fMag > origMag && fMag > 1e-9 {
					s := origMag / fMag
					fCr *= s
					fCb *= s
				}

				// rebuild RGB around the untouched luma
				r := centerLuma + fCr
				b := centerLuma + fCb
				g := (centerLuma - 0.299*r - 0.114*b) / 0.587
				out.Set(x, y, r, g, b)
			}
		}
	})

	return out
}
