package rawdev

import(
	"image"

	"github.com/fogleman/gg"
	"github.com/skypies/util/histogram"
)

// Levels bins the intermediate into 256-bucket histograms, one per
// channel plus one for luma. Values outside [0,1] land in the end
// buckets.
func Levels(im Intermediate) []histogram.Histogram {
	hists := []histogram.Histogram{
		histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256},
		histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256},
		histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256},
		histogram.Histogram{NumBuckets:256, ValMin:0, ValMax:256},
	}

	if im.RGB == nil {
		return hists
	}

	bin := func(v float32) int {
		n := int(v * 255.0)
		if n < 0 { n = 0 }
		if n > 255 { n = 255 }
		return n
	}

	w, h := im.Dim()
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			r, g, b := im.RGB.At(x, y)
			hists[0].Add(histogram.ScalarVal(bin(r)))
			hists[1].Add(histogram.ScalarVal(bin(g)))
			hists[2].Add(histogram.ScalarVal(bin(b)))
			hists[3].Add(histogram.ScalarVal(bin(0.299*r + 0.587*g + 0.114*b)))
		}
	}

	return hists
}

// RenderLevels draws the channel histograms as overlaid bar charts,
// one color per channel, luma in gray behind them.
func RenderLevels(im Intermediate, title string) image.Image {
	width, height := 512, 256
	counts := levelCounts(im)

	max := 1
	for i:=0; i<4; i++ {
		for _, n := range counts[i] {
			if n > max { max = n }
		}
	}

	img := image.NewRGBA(image.Rectangle{Max:image.Point{width, height}})
	dc := gg.NewContextForImage(img)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	colors := [4][3]float64{
		{0.35, 0.35, 0.35}, // luma first, so the channels draw over it
		{1, 0, 0},
		{0, 1, 0},
		{0.3, 0.3, 1},
	}
	order := [4]int{3, 0, 1, 2}

	for pass:=0; pass<4; pass++ {
		ch := order[pass]
		dc.SetRGB(colors[pass][0], colors[pass][1], colors[pass][2])
		for b:=0; b<256; b++ {
			barH := float64(counts[ch][b]) / float64(max) * float64(height-20)
			x := float64(b * 2)
			dc.DrawRectangle(x, float64(height)-barH, 2, barH)
		}
		dc.Fill()
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 10, 14)

	return dc.Image()
}

// levelCounts is the raw per-bucket tally behind Levels; the chart
// renderer needs the counts, which Histogram doesn't expose.
func levelCounts(im Intermediate) [4][]int {
	counts := [4][]int{}
	for i:=0; i<4; i++ {
		counts[i] = make([]int, 256)
	}
	if im.RGB == nil {
		return counts
	}

	bin := func(v float32) int {
		n := int(v * 255.0)
		if n < 0 { n = 0 }
		if n > 255 { n = 255 }
		return n
	}

	w, h := im.Dim()
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			r, g, b := im.RGB.At(x, y)
			counts[0][bin(r)]++
			counts[1][bin(g)]++
			counts[2][bin(b)]++
			counts[3][bin(0.299*r + 0.587*g + 0.114*b)]++
		}
	}
	return counts
}
