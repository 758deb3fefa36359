package rawdev

// Tone encoding: the sRGB display transfer function, applied to every
// sample regardless of channel shape. Callers wanting linear light
// simply leave the step out.

import(
	"github.com/abworrall/go-rawdev/pkg/emath"
	"github.com/abworrall/go-rawdev/pkg/pix"
)

func toneEncode(im Intermediate) {
	data, _ := im.Samples()
	if data == nil {
		return
	}

	_, h := im.Dim()
	perRow := len(data) / h

	pix.ParallelRows(h, func(y0, y1 int) {
		for i:=y0*perRow; i<y1*perRow; i++ {
			data[i] = float32(emath.GammaExpand_F64(float64(data[i])))
		}
	})
}
