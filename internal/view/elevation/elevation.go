// Package elevation builds the elevation profile chart of the selected
// trail and turns pointer movement over it into hover updates.
package elevation

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"backend-trailview/internal/geometry"
	"backend-trailview/internal/hover"
	"backend-trailview/internal/logging"
	"backend-trailview/internal/scale"
	"backend-trailview/internal/selection"
	"backend-trailview/internal/trail"

	"go.uber.org/zap"
)

const BoxLabel = "Elevation"

type Options struct {
	Width          float64
	Height         float64
	PixelTolerance float64
	Interval       time.Duration
}

type HoverIndicator struct {
	Index         int     `json:"index"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	GuideTop      float64 `json:"guide_top"`
	GuideBottom   float64 `json:"guide_bottom"`
	ElevationFeet int     `json:"elevation_ft"`
}

type Model struct {
	Empty  bool            `json:"empty"`
	Trail  string          `json:"trail,omitempty"`
	Width  float64         `json:"width,omitempty"`
	Height float64         `json:"height,omitempty"`
	Path   string          `json:"path,omitempty"`
	Label  string          `json:"label,omitempty"`
	Length string          `json:"length,omitempty"`
	Hover  *HoverIndicator `json:"hover,omitempty"`
}

// View is the chart of one session.
type View struct {
	opts    Options
	ctrl    *selection.Controller
	tracker *hover.Tracker
	cancel  func()

	mu     sync.Mutex
	parsed *trail.Trail
	track  geometry.Track
}

func New(ctrl *selection.Controller, opts Options) *View {
	v := &View{opts: opts, ctrl: ctrl}
	v.tracker = hover.NewTracker(hover.Options{
		ChartWidth:     opts.Width,
		PixelTolerance: opts.PixelTolerance,
		Interval:       opts.Interval,
	}, v.reportHover)
	v.cancel = ctrl.Subscribe(selection.FieldSelection, func(s selection.State, _ selection.Field) {
		v.tracker.Reset(v.trackFor(s.Trail).Len())
	})
	v.tracker.Reset(v.trackFor(ctrl.State().Trail).Len())
	return v
}

// reportHover forwards an index only while it still belongs to the parsed
// track; the controller drops it if the selection changed since.
func (v *View) reportHover(index, n int) {
	v.mu.Lock()
	t, track := v.parsed, v.track
	v.mu.Unlock()
	if t == nil || track.Len() != n || index < 0 || index >= n {
		return
	}
	v.ctrl.SetHoveredIndexFor(t, index)
}

// PointerMove handles a pointer event x pixels right of the chart's left edge.
func (v *View) PointerMove(x float64) {
	v.tracker.Move(x)
}

func (v *View) PointerLeave() {
	v.tracker.Leave()
	v.ctrl.ClearHover()
}

// Close is the chart's close affordance: it drops the selection.
func (v *View) Close() {
	v.ctrl.SetSelectedTrail(nil)
}

// Teardown cancels held hover reports and detaches from the controller.
func (v *View) Teardown() {
	v.tracker.Stop()
	v.cancel()
}

func (v *View) Model(state selection.State) Model {
	if !state.Selected() {
		return Model{Empty: true}
	}
	track := v.trackFor(state.Trail)
	if track.Len() == 0 {
		return Model{Empty: true}
	}
	return Build(*state.Trail, track, state, v.opts.Width, v.opts.Height)
}

// Build renders the chart for a parsed track.
func Build(t trail.Trail, track geometry.Track, state selection.State, width, height float64) Model {
	start, end := geometry.IndexDomain(track)
	lo, hi := geometry.ElevationExtent(track)
	x := scale.NewLinear([2]float64{float64(start), float64(end)}, [2]float64{0, width})
	y := scale.NewLinear([2]float64{lo, hi}, [2]float64{0, height})

	var path strings.Builder
	for i, wp := range track {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f,%.2f", cmd, x.Map(float64(i+1)), height-y.Map(wp.ElevationFeet))
	}

	m := Model{
		Trail:  t.Name,
		Width:  width,
		Height: height,
		Path:   path.String(),
		Label:  BoxLabel,
		Length: fmt.Sprintf("%g miles", t.TotalRealDistance),
	}
	if index, ok := state.Hover(); ok {
		if wp, err := geometry.WaypointAt(track, index); err == nil {
			feet := int(math.Floor(wp.ElevationFeet))
			m.Hover = &HoverIndicator{
				Index:         index,
				X:             x.Map(float64(index + 1)),
				Y:             height - y.Map(wp.ElevationFeet),
				GuideTop:      0,
				GuideBottom:   height,
				ElevationFeet: feet,
			}
			m.Label = fmt.Sprintf("%s - %dft", BoxLabel, feet)
		}
	}
	return m
}

func (v *View) trackFor(t *trail.Trail) geometry.Track {
	if t == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.parsed == t {
		return v.track
	}
	track, err := t.Track()
	if err != nil {
		logging.L().Warn("elevation chart skipped", zap.String("trail", t.Name), zap.Error(err))
	}
	v.parsed, v.track = t, track
	return track
}
