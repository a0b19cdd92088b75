package mapview

import (
	"testing"

	"backend-trailview/internal/geometry"
	"backend-trailview/internal/selection"
	"backend-trailview/internal/trail"
	"backend-trailview/internal/trail/trailtest"
)

func TestModelWithoutSelection(t *testing.T) {
	catalog := trailtest.Catalog(trailtest.A(), trailtest.Broken(), trailtest.B())
	v := New(catalog, selection.NewController())

	m := v.Model(selection.State{})
	if len(m.Polylines) != 2 {
		t.Fatalf("expected malformed trail skipped, got %d polylines", len(m.Polylines))
	}
	for _, p := range m.Polylines {
		if p.Style != (Style{StrokeColor: DefaultColor, StrokeOpacity: 1}) {
			t.Fatalf("unexpected default style %+v", p.Style)
		}
	}
	if m.Marker != nil {
		t.Fatalf("unexpected marker")
	}
	if m.Polylines[0].Path[1] != (LatLng{Lat: 38.44, Lng: -78.86}) {
		t.Fatalf("unexpected path %+v", m.Polylines[0].Path)
	}
}

func TestClickSelectsAndHighlights(t *testing.T) {
	catalog := trailtest.Catalog()
	ctrl := selection.NewController()
	v := New(catalog, ctrl)

	if err := v.Click("B"); err != nil {
		t.Fatalf("click: %v", err)
	}
	m := v.Model(ctrl.State())
	for _, p := range m.Polylines {
		switch p.Trail {
		case "B":
			if !p.Selected || p.Style.StrokeColor != SelectedColor || p.Style.StrokeOpacity != 1 {
				t.Fatalf("expected B highlighted, got %+v", p)
			}
		default:
			if p.Selected || p.Style.StrokeOpacity != dimmedOpacity {
				t.Fatalf("expected %s dimmed, got %+v", p.Trail, p)
			}
		}
	}

	if err := v.Click("nope"); err != trail.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkerFollowsHover(t *testing.T) {
	catalog := trailtest.Catalog()
	ctrl := selection.NewController()
	v := New(catalog, ctrl)
	a := trailtest.Lookup(catalog, "A")
	track, err := a.Track()
	if err != nil {
		t.Fatalf("track: %v", err)
	}

	ctrl.SetSelectedTrail(a)
	for i := range track {
		ctrl.SetHoveredIndex(i)
		m := v.Model(ctrl.State())
		if m.Marker == nil {
			t.Fatalf("expected marker at %d", i)
		}
		wp, _ := geometry.WaypointAt(track, i)
		if m.Marker.Position != (LatLng{Lat: wp.Latitude, Lng: wp.Longitude}) {
			t.Fatalf("marker %d at %+v, waypoint %+v", i, m.Marker.Position, wp)
		}
	}

	// index zero is a real waypoint, not "no hover"
	ctrl.SetHoveredIndex(0)
	if m := v.Model(ctrl.State()); m.Marker == nil || m.Marker.Index != 0 {
		t.Fatalf("expected marker at first waypoint")
	}

	ctrl.SetHoveredIndex(7)
	if m := v.Model(ctrl.State()); m.Marker != nil {
		t.Fatalf("expected out of range marker omitted")
	}

	ctrl.SetSelectedTrail(nil)
	if m := v.Model(ctrl.State()); m.Marker != nil {
		t.Fatalf("expected no marker without selection")
	}
}

func TestStaleHoverWithoutSelectionIgnored(t *testing.T) {
	state := selection.State{HoveredIndex: 1, Hovered: true}
	if MarkerFor(geometry.Track{{}, {}}, state) != nil {
		t.Fatalf("hover without selection must not produce a marker")
	}
}

func TestTracksCachedPerStore(t *testing.T) {
	catalog := trailtest.Catalog()
	v := New(catalog, selection.NewController())

	first := v.tracksFor(catalog.Current())
	second := v.tracksFor(catalog.Current())
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected cache content")
	}

	catalog.Replace(trail.NewStore([]trail.Trail{trailtest.A()}))
	if got := v.Model(selection.State{}); len(got.Polylines) != 1 {
		t.Fatalf("expected cache refreshed after catalog swap, got %d", len(got.Polylines))
	}
}
