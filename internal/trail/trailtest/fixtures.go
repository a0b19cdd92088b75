// Package trailtest provides trail records shared by view and session tests.
package trailtest

import (
	"fmt"
	"strings"

	"backend-trailview/internal/trail"
)

// LineString builds a single-feature collection from [lon, lat, ele] triples.
func LineString(coords ...[3]float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("[%g,%g,%g]", c[0], c[1], c[2])
	}
	return `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[` +
		strings.Join(parts, ",") + `]}}]}`
}

// A has three waypoints with elevations 100, 150 and 120 feet.
func A() trail.Trail {
	return trail.Trail{
		Name: "A",
		GeoJSON: LineString(
			[3]float64{-78.87, 38.43, 100},
			[3]float64{-78.86, 38.44, 150},
			[3]float64{-78.85, 38.45, 120},
		),
		TotalRealDistance: 2.4,
		Fields:            map[string]any{"difficulty": "moderate"},
	}
}

// B has two waypoints.
func B() trail.Trail {
	return trail.Trail{
		Name: "B",
		GeoJSON: LineString(
			[3]float64{-78.80, 38.40, 900},
			[3]float64{-78.79, 38.41, 1000},
		),
		TotalRealDistance: 1.1,
	}
}

// Broken cannot be parsed into a track.
func Broken() trail.Trail {
	return trail.Trail{Name: "Broken", GeoJSON: `{"type":"FeatureCollection"`}
}

func Catalog(trails ...trail.Trail) *trail.Catalog {
	if len(trails) == 0 {
		trails = []trail.Trail{A(), B()}
	}
	return trail.NewCatalog(trail.NewStore(trails))
}

// Lookup returns the stored record for name and panics when it is missing.
func Lookup(c *trail.Catalog, name string) *trail.Trail {
	t, err := c.Current().Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}
