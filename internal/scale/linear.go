// Package scale maps a numeric domain onto a pixel range and back.
package scale

// Linear is a continuous linear scale. A zero-width domain maps every
// input to the middle of the range, and a zero-width range inverts to
// the middle of the domain.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

func NewLinear(domain, rng [2]float64) Linear {
	return Linear{d0: domain[0], d1: domain[1], r0: rng[0], r1: rng[1]}
}

func (s Linear) Domain() [2]float64 { return [2]float64{s.d0, s.d1} }

func (s Linear) Range() [2]float64 { return [2]float64{s.r0, s.r1} }

func (s Linear) Map(v float64) float64 {
	return interpolate(s.d0, s.d1, s.r0, s.r1, v)
}

func (s Linear) Invert(px float64) float64 {
	return interpolate(s.r0, s.r1, s.d0, s.d1, px)
}

func interpolate(a0, a1, b0, b1, v float64) float64 {
	span := a1 - a0
	t := 0.5
	if span != 0 {
		t = (v - a0) / span
	}
	return b0 + t*(b1-b0)
}
