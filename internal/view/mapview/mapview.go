// Package mapview builds the overlay descriptors for the trail map.
package mapview

import (
	"sync"

	"backend-trailview/internal/geometry"
	"backend-trailview/internal/logging"
	"backend-trailview/internal/selection"
	"backend-trailview/internal/trail"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	SelectedColor = "#d38900"
	DefaultColor  = "blue"

	dimmedOpacity = 0.5
	defaultZoom   = 10
)

var defaultCenter = LatLng{Lat: 38.4350512, Lng: -78.870104}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Style struct {
	StrokeColor   string  `json:"strokeColor"`
	StrokeOpacity float64 `json:"strokeOpacity"`
}

// Polyline is one clickable trail overlay. Clicking it selects Trail.
type Polyline struct {
	Trail    string   `json:"trail"`
	Path     []LatLng `json:"path"`
	Style    Style    `json:"style"`
	Selected bool     `json:"selected"`
}

type Marker struct {
	Position LatLng `json:"position"`
	Index    int    `json:"index"`
}

type Viewport struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

type Model struct {
	Viewport  Viewport   `json:"viewport"`
	Polylines []Polyline `json:"polylines"`
	Marker    *Marker    `json:"marker,omitempty"`
}

// StyleFor returns the overlay style of a trail given the current selection.
func StyleFor(t trail.Trail, selected *trail.Trail) Style {
	switch {
	case selected == nil:
		return Style{StrokeColor: DefaultColor, StrokeOpacity: 1}
	case selected.Name == t.Name:
		return Style{StrokeColor: SelectedColor, StrokeOpacity: 1}
	default:
		return Style{StrokeColor: DefaultColor, StrokeOpacity: dimmedOpacity}
	}
}

// MarkerFor places the hover marker on the selected track, or returns nil
// when there is no defined hover or the index does not address a waypoint.
func MarkerFor(track geometry.Track, state selection.State) *Marker {
	index, ok := state.Hover()
	if !ok {
		return nil
	}
	wp, err := geometry.WaypointAt(track, index)
	if err != nil {
		return nil
	}
	return &Marker{Position: toLatLng(wp), Index: index}
}

// View renders the map for one session. Parsed paths are cached per
// trail store so hover updates do not re-parse every trail.
type View struct {
	catalog *trail.Catalog
	ctrl    *selection.Controller

	mu     sync.Mutex
	store  *trail.Store
	tracks map[string]geometry.Track
}

func New(catalog *trail.Catalog, ctrl *selection.Controller) *View {
	return &View{catalog: catalog, ctrl: ctrl}
}

// Click selects the trail whose overlay was clicked.
func (v *View) Click(name string) error {
	t, err := v.catalog.Current().Lookup(name)
	if err != nil {
		return err
	}
	v.ctrl.SetSelectedTrail(t)
	return nil
}

func (v *View) Model(state selection.State) Model {
	store := v.catalog.Current()
	tracks := v.tracksFor(store)

	m := Model{
		Viewport:  Viewport{Center: defaultCenter, Zoom: defaultZoom},
		Polylines: make([]Polyline, 0, store.Len()),
	}
	for _, t := range store.All() {
		track, ok := tracks[t.Name]
		if !ok {
			continue
		}
		m.Polylines = append(m.Polylines, Polyline{
			Trail:    t.Name,
			Path:     lo.Map(track, func(w geometry.Waypoint, _ int) LatLng { return toLatLng(w) }),
			Style:    StyleFor(t, state.Trail),
			Selected: state.Trail != nil && state.Trail.Name == t.Name,
		})
	}
	if state.Trail != nil {
		track, ok := tracks[state.Trail.Name]
		if !ok {
			// the selection may predate a catalog swap
			parsed, err := state.Trail.Track()
			if err == nil {
				track, ok = parsed, true
			}
		}
		if ok {
			m.Marker = MarkerFor(track, state)
		}
	}
	return m
}

func (v *View) tracksFor(store *trail.Store) map[string]geometry.Track {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.store == store && v.tracks != nil {
		return v.tracks
	}
	tracks := make(map[string]geometry.Track, store.Len())
	for _, t := range store.All() {
		track, err := t.Track()
		if err != nil {
			logging.L().Warn("skipping trail on map", zap.String("trail", t.Name), zap.Error(err))
			continue
		}
		tracks[t.Name] = track
	}
	v.store = store
	v.tracks = tracks
	return tracks
}

func toLatLng(w geometry.Waypoint) LatLng {
	return LatLng{Lat: w.Latitude, Lng: w.Longitude}
}
