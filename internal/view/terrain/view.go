package terrain

import (
	"context"
	"sync"
	"time"

	"backend-trailview/internal/logging"
	"backend-trailview/internal/selection"
	"backend-trailview/internal/trail"

	"go.uber.org/zap"
)

type Status int

const (
	Idle Status = iota
	Active
)

func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

type Options struct {
	Width         float64
	Height        float64
	FrameInterval time.Duration
}

// Frame is what the renderer rasterizes on every tick.
type Frame struct {
	Revision uint64 `json:"revision"`
	Trail    string `json:"trail,omitempty"`
	Scene    Scene  `json:"scene"`
	Track    []Vec3 `json:"track,omitempty"`
}

type Renderer interface {
	Render(frame Frame) error
}

// View owns the scene of one session. It rebuilds the track only when
// the selected trail changes; hover updates never reach it.
type View struct {
	opts      Options
	ctrl      *selection.Controller
	resources Resources
	renderer  Renderer

	mu       sync.Mutex
	status   Status
	scene    Scene
	track    Geometry
	trail    *trail.Trail
	revision uint64
	builds   int
	unsub    func()
	stop     context.CancelFunc
	done     chan struct{}
}

func New(ctrl *selection.Controller, resources Resources, renderer Renderer, opts Options) *View {
	return &View{opts: opts, ctrl: ctrl, resources: resources, renderer: renderer}
}

func (v *View) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Mount performs the one-time scene setup, builds the current selection
// and starts the render loop. Mounting an active view does nothing.
func (v *View) Mount(ctx context.Context) {
	v.mu.Lock()
	if v.status == Active {
		v.mu.Unlock()
		return
	}
	v.status = Active
	v.scene = NewScene(v.opts.Width, v.opts.Height)
	v.revision++
	loopCtx, cancel := context.WithCancel(ctx)
	v.stop = cancel
	v.done = make(chan struct{})
	done := v.done
	v.mu.Unlock()

	unsub := v.ctrl.Subscribe(selection.FieldSelection, func(s selection.State, _ selection.Field) {
		v.rebuild(s.Trail)
	})
	v.mu.Lock()
	v.unsub = unsub
	v.mu.Unlock()
	v.rebuild(v.ctrl.State().Trail)

	go v.loop(loopCtx, done)
}

// Unmount stops the render loop, detaches from the controller and
// releases the track geometry.
func (v *View) Unmount() {
	v.mu.Lock()
	if v.status != Active {
		v.mu.Unlock()
		return
	}
	stop, done, unsub := v.stop, v.done, v.unsub
	v.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	stop()
	<-done

	v.mu.Lock()
	defer v.mu.Unlock()
	v.releaseLocked()
	v.trail = nil
	v.status = Idle
	v.revision++
}

// Frame snapshots the scene for rendering.
func (v *View) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := Frame{Revision: v.revision, Scene: v.scene}
	if v.trail != nil {
		f.Trail = v.trail.Name
	}
	if v.track != nil {
		f.Track = v.track.Vertices()
	}
	return f
}

// Builds counts track rebuilds since creation.
func (v *View) Builds() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.builds
}

func (v *View) rebuild(t *trail.Trail) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status != Active {
		return
	}
	v.builds++
	v.revision++
	v.releaseLocked()
	v.trail = t
	if t == nil {
		return
	}
	track, err := t.Track()
	if err != nil {
		logging.L().Warn("terrain track skipped", zap.String("trail", t.Name), zap.Error(err))
		return
	}
	g, err := v.resources.Acquire(TrackName, Project(track, v.opts.Width, v.opts.Height))
	if err != nil {
		logging.L().Error("terrain geometry allocation failed", zap.String("trail", t.Name), zap.Error(err))
		return
	}
	v.track = g
}

func (v *View) releaseLocked() {
	if v.track == nil {
		return
	}
	if err := v.track.Release(); err != nil {
		logging.L().Warn("terrain geometry release failed", zap.String("id", v.track.ID()), zap.Error(err))
	}
	v.track = nil
}

func (v *View) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	interval := v.opts.FrameInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := v.renderer.Render(v.Frame()); err != nil {
				logging.L().Debug("terrain frame dropped", zap.Error(err))
			}
		}
	}
}
