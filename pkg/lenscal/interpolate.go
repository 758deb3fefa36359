package lenscal

// Focal-length interpolation. The rules, applied to a focal-sorted
// copy of the table: an exact match (to 1e-5) wins outright; a query
// outside the table clamps to the boundary entry; anything in between
// lerps by fractional focal position. Two bracketing entries with
// different distortion models never get mixed - the lower entry wins
// verbatim, since interpolating between incompatible models is
// undefined. A near-zero focal span likewise falls back to the lower
// entry rather than dividing by it.

import(
	"math"
	"sort"
)

func (c *Calibration)resolveDistortion(focal float32, p *DistortionParams) {
	if len(c.Distortions) == 0 {
		return
	}

	sorted := make([]Distortion, len(c.Distortions))
	copy(sorted, c.Distortions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Focal < sorted[j].Focal })

	for _, d := range sorted {
		if math.Abs(float64(d.Focal - focal)) < focalEpsilon {
			p.Model, p.K1, p.K2, p.K3 = d.Model, float64(d.K1), float64(d.K2), float64(d.K3)
			return
		}
	}

	if focal < sorted[0].Focal {
		d := sorted[0]
		p.Model, p.K1, p.K2, p.K3 = d.Model, float64(d.K1), float64(d.K2), float64(d.K3)
		return
	}
	if focal > sorted[len(sorted)-1].Focal {
		d := sorted[len(sorted)-1]
		p.Model, p.K1, p.K2, p.K3 = d.Model, float64(d.K1), float64(d.K2), float64(d.K3)
		return
	}

	for i:=0; i<len(sorted)-1; i++ {
		d1, d2 := sorted[i], sorted[i+1]
		if focal < d1.Focal || focal > d2.Focal {
			continue
		}

		if d1.Model != d2.Model {
			// incompatible models; take the lower entry verbatim
			p.Model, p.K1, p.K2, p.K3 = d1.Model, float64(d1.K1), float64(d1.K2), float64(d1.K3)
			return
		}

		t, ok := focalFrac(focal, d1.Focal, d2.Focal)
		if !ok {
			p.Model, p.K1, p.K2, p.K3 = d1.Model, float64(d1.K1), float64(d1.K2), float64(d1.K3)
			return
		}

		p.Model = d1.Model
		p.K1 = lerp(float64(d1.K1), float64(d2.K1), t)
		p.K2 = lerp(float64(d1.K2), float64(d2.K2), t)
		p.K3 = lerp(float64(d1.K3), float64(d2.K3), t)
		return
	}
}

func (c *Calibration)resolveTCA(focal float32, p *DistortionParams) {
	if len(c.TCAs) == 0 {
		return
	}

	sorted := make([]TCA, len(c.TCAs))
	copy(sorted, c.TCAs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Focal < sorted[j].Focal })

	for _, e := range sorted {
		if math.Abs(float64(e.Focal - focal)) < focalEpsilon {
			p.TCARed, p.TCABlue = float64(e.VR), float64(e.VB)
			return
		}
	}

	if focal < sorted[0].Focal {
		p.TCARed, p.TCABlue = float64(sorted[0].VR), float64(sorted[0].VB)
		return
	}
	if focal > sorted[len(sorted)-1].Focal {
		last := sorted[len(sorted)-1]
		p.TCARed, p.TCABlue = float64(last.VR), float64(last.VB)
		return
	}

	for i:=0; i<len(sorted)-1; i++ {
		e1, e2 := sorted[i], sorted[i+1]
		if focal < e1.Focal || focal > e2.Focal {
			continue
		}

		t, ok := focalFrac(focal, e1.Focal, e2.Focal)
		if !ok {
			p.TCARed, p.TCABlue = float64(e1.VR), float64(e1.VB)
			return
		}

		p.TCARed = lerp(float64(e1.VR), float64(e2.VR), t)
		p.TCABlue = lerp(float64(e1.VB), float64(e2.VB), t)
		return
	}
}

// Vignetting is two-dimensional on top of the focal axis: within each
// bracketing focal group we pick the entry with the nearest aperture,
// then the nearest focus distance among entries at that aperture, and
// lerp the two winners across focal length. Deliberately a two-stage
// nearest-neighbor, not a bilinear fit - this matches the published
// calibration tables' granularity.
func (c *Calibration)resolveVignetting(focal, aperture, distance float32, p *DistortionParams) {
	if len(c.Vignettings) == 0 {
		return
	}

	// distinct focal lengths, sorted
	focals := []float32{}
	seen := map[float32]bool{}
	for _, v := range c.Vignettings {
		if !seen[v.Focal] {
			seen[v.Focal] = true
			focals = append(focals, v.Focal)
		}
	}
	sort.Slice(focals, func(i, j int) bool { return focals[i] < focals[j] })

	pick := func(f float32) Vignetting {
		return c.bestVignetting(f, aperture, distance)
	}

	// exact / clamped cases collapse to a single group
	if math.Abs(float64(focals[0] - focal)) < focalEpsilon || focal < focals[0] {
		setVig(p, pick(focals[0]))
		return
	}
	last := focals[len(focals)-1]
	if math.Abs(float64(last - focal)) < focalEpsilon || focal > last {
		setVig(p, pick(last))
		return
	}

	for i:=0; i<len(focals)-1; i++ {
		f1, f2 := focals[i], focals[i+1]
		if focal < f1 || focal > f2 {
			continue
		}
		if math.Abs(float64(f1 - focal)) < focalEpsilon {
			setVig(p, pick(f1))
			return
		}
		if math.Abs(float64(f2 - focal)) < focalEpsilon {
			setVig(p, pick(f2))
			return
		}

		v1, v2 := pick(f1), pick(f2)
		t, ok := focalFrac(focal, f1, f2)
		if !ok {
			setVig(p, v1)
			return
		}

		p.VigK1 = lerp(float64(v1.K1), float64(v2.K1), t)
		p.VigK2 = lerp(float64(v1.K2), float64(v2.K2), t)
		p.VigK3 = lerp(float64(v1.K3), float64(v2.K3), t)
		return
	}
}

// bestVignetting picks, within one focal-length group, the entry with
// the closest aperture; ties on aperture resolve by closest distance.
func (c *Calibration)bestVignetting(focal, aperture, distance float32) Vignetting {
	bestAperture := float32(0)
	bestApertureDiff := math.MaxFloat64
	for _, v := range c.Vignettings {
		if v.Focal != focal {
			continue
		}
		diff := math.Abs(float64(v.Aperture - aperture))
		if diff < bestApertureDiff {
			bestApertureDiff = diff
			bestAperture = v.Aperture
		}
	}

	var best Vignetting
	bestDistanceDiff := math.MaxFloat64
	for _, v := range c.Vignettings {
		if v.Focal != focal || v.Aperture != bestAperture {
			continue
		}
		diff := math.Abs(float64(v.Distance - distance))
		if diff < bestDistanceDiff {
			bestDistanceDiff = diff
			best = v
		}
	}
	return best
}

func setVig(p *DistortionParams, v Vignetting) {
	p.VigK1, p.VigK2, p.VigK3 = float64(v.K1), float64(v.K2), float64(v.K3)
}

// focalFrac returns the fractional position of focal between f1 and
// f2, refusing a near-zero span.
func focalFrac(focal, f1, f2 float32) (float64, bool) {
	span := float64(f2 - f1)
	if span < focalEpsilon {
		return 0, false
	}
	return (float64(focal) - float64(f1)) / span, true
}

func lerp(a, b, t float64) float64 { return a + t*(b-a) }
