// Package geometry derives tracks from trail GeoJSON and answers the
// questions every view asks about them: elevation extent, index domain,
// bounded waypoint lookup and geographic extent.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/samber/lo"
)

const (
	metersPerMile = 1609.344
	FeetPerMile   = 5280
)

var (
	ErrMalformedGeometry = errors.New("malformed trail geometry")
	ErrIndexOutOfRange   = errors.New("waypoint index out of range")
)

type Waypoint struct {
	Longitude     float64 `json:"lng"`
	Latitude      float64 `json:"lat"`
	ElevationFeet float64 `json:"elevation_ft"`
}

func (w Waypoint) Point() orb.Point {
	return orb.Point{w.Longitude, w.Latitude}
}

// Track is ordered from trail start to end. Index i addresses the same
// physical point in every view.
type Track []Waypoint

func (t Track) Len() int {
	return len(t)
}

// featureCollection keeps the third coordinate component, which
// orb/geojson drops when decoding into orb.Point.
type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Geometry *struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ParseTrack reads the first feature of a FeatureCollection, which must be
// a LineString of [lon, lat, elevationFeet] triples.
func ParseTrack(raw string) (Track, error) {
	var fc featureCollection
	if err := json.Unmarshal([]byte(raw), &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: no features", ErrMalformedGeometry)
	}
	g := fc.Features[0].Geometry
	if g == nil || g.Type != "LineString" {
		return nil, fmt.Errorf("%w: first feature is not a LineString", ErrMalformedGeometry)
	}
	if len(g.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: empty coordinate list", ErrMalformedGeometry)
	}
	track := make(Track, len(g.Coordinates))
	for i, c := range g.Coordinates {
		if len(c) < 3 {
			return nil, fmt.Errorf("%w: coordinate %d has %d components", ErrMalformedGeometry, i, len(c))
		}
		track[i] = Waypoint{Longitude: c[0], Latitude: c[1], ElevationFeet: c[2]}
	}
	return track, nil
}

func Elevations(t Track) []float64 {
	return lo.Map(t, func(w Waypoint, _ int) float64 { return w.ElevationFeet })
}

// ElevationExtent returns (v, v) for a single waypoint and (0, 0) for an empty track.
func ElevationExtent(t Track) (float64, float64) {
	if len(t) == 0 {
		return 0, 0
	}
	elevations := Elevations(t)
	return lo.Min(elevations), lo.Max(elevations)
}

// IndexDomain is 1-based so that a raw scale output of 0 never names a waypoint.
func IndexDomain(t Track) (int, int) {
	return 1, len(t)
}

func WaypointAt(t Track, index int) (Waypoint, error) {
	if index < 0 || index >= len(t) {
		return Waypoint{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(t))
	}
	return t[index], nil
}

func LineString(t Track) orb.LineString {
	return lo.Map(t, func(w Waypoint, _ int) orb.Point { return w.Point() })
}

func Bound(t Track) orb.Bound {
	return LineString(t).Bound()
}

// SpanMiles is the longer of the bounding box's south and west edges, in miles.
func SpanMiles(t Track) float64 {
	if len(t) == 0 {
		return 0
	}
	b := Bound(t)
	sw := b.Min
	south := geo.Distance(sw, orb.Point{b.Max.X(), sw.Y()})
	west := geo.Distance(sw, orb.Point{sw.X(), b.Max.Y()})
	return max(south, west) / metersPerMile
}
