package trail

import "backend-trailview/internal/geometry"

// Trail is one row of the trail table. Records are never mutated after load.
type Trail struct {
	Name              string         `json:"name"`
	GeoJSON           string         `json:"geoJson"`
	TotalRealDistance float64        `json:"total_real_distance"`
	Fields            map[string]any `json:"fields,omitempty"`
}

// Summary is the list representation without the geometry payload.
type Summary struct {
	Name              string         `json:"name"`
	TotalRealDistance float64        `json:"total_real_distance"`
	Fields            map[string]any `json:"fields,omitempty"`
}

type Profile struct {
	Name          string  `json:"name"`
	Waypoints     int     `json:"waypoints"`
	MinElevation  float64 `json:"min_elevation_ft"`
	MaxElevation  float64 `json:"max_elevation_ft"`
	DomainStart   int     `json:"domain_start"`
	DomainEnd     int     `json:"domain_end"`
	SpanMiles     float64 `json:"span_miles"`
	TotalDistance float64 `json:"total_real_distance"`
}

// Same reports whether two trails share an identity. Two absent trails are the same.
func Same(a, b *Trail) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name == b.Name
}

func (t Trail) Track() (geometry.Track, error) {
	return geometry.ParseTrack(t.GeoJSON)
}

func (t Trail) Summary() Summary {
	return Summary{Name: t.Name, TotalRealDistance: t.TotalRealDistance, Fields: t.Fields}
}

func (t Trail) Profile() (Profile, error) {
	track, err := t.Track()
	if err != nil {
		return Profile{}, err
	}
	lo, hi := geometry.ElevationExtent(track)
	start, end := geometry.IndexDomain(track)
	return Profile{
		Name:          t.Name,
		Waypoints:     track.Len(),
		MinElevation:  lo,
		MaxElevation:  hi,
		DomainStart:   start,
		DomainEnd:     end,
		SpanMiles:     geometry.SpanMiles(track),
		TotalDistance: t.TotalRealDistance,
	}, nil
}
