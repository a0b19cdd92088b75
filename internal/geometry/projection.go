package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Mercator maps lon/lat to a pixel plane: center lands on translate and
// one radian of longitude spans scale pixels.
type Mercator struct {
	k      float64
	origin orb.Point
	tx, ty float64
}

func NewMercator(center orb.Point, scale float64, translate [2]float64) Mercator {
	return Mercator{
		k:      scale / orb.EarthRadius,
		origin: project.Point(center, project.WGS84.ToMercator),
		tx:     translate[0],
		ty:     translate[1],
	}
}

// Project returns screen coordinates, y growing southwards.
func (m Mercator) Project(lon, lat float64) (float64, float64) {
	p := project.Point(orb.Point{lon, lat}, project.WGS84.ToMercator)
	x := m.tx + (p.X()-m.origin.X())*m.k
	y := m.ty - (p.Y()-m.origin.Y())*m.k
	return x, y
}
