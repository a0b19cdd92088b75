// Package session binds one selection controller to the map, elevation
// and terrain views of a browser tab and streams their models to it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"backend-trailview/internal/logging"
	"backend-trailview/internal/selection"
	"backend-trailview/internal/trail"
	"backend-trailview/internal/view/elevation"
	"backend-trailview/internal/view/mapview"
	"backend-trailview/internal/view/terrain"

	"go.uber.org/zap"
)

const (
	EventMap       = "map"
	EventElevation = "elevation"
	EventTerrain   = "terrain"
	EventClosed    = "closed"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMissingOffset  = errors.New("hover message without x")
)

// Publisher delivers encoded events to the clients of a session.
type Publisher interface {
	Broadcast(sessionID string, payload []byte)
}

type Event struct {
	Type     string `json:"type"`
	Session  string `json:"session"`
	Revision uint64 `json:"revision"`
	Payload  any    `json:"payload,omitempty"`
}

// Message is an inbound client interaction.
type Message struct {
	Type string   `json:"type"`
	Name string   `json:"name,omitempty"`
	X    *float64 `json:"x,omitempty"`
}

type Options struct {
	Chart   elevation.Options
	Terrain terrain.Options
}

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ctrl      *selection.Controller
	mapView   *mapview.View
	chart     *elevation.View
	terrain   *terrain.View
	resources *terrain.MemoryResources
	pub       Publisher
	unsubs    []func()
	closeOnce sync.Once
}

func newSession(ctx context.Context, id string, catalog *trail.Catalog, pub Publisher, opts Options) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		ctrl:      selection.NewController(),
		resources: terrain.NewMemoryResources(),
		pub:       pub,
	}
	s.mapView = mapview.New(catalog, s.ctrl)
	s.chart = elevation.New(s.ctrl, opts.Chart)
	s.terrain = terrain.New(s.ctrl, s.resources, &frameForwarder{session: s}, opts.Terrain)

	s.unsubs = append(s.unsubs,
		s.ctrl.Subscribe(selection.FieldAll, func(st selection.State, _ selection.Field) {
			s.publish(EventMap, st.Revision, s.mapView.Model(st))
		}),
		s.ctrl.Subscribe(selection.FieldAll, func(st selection.State, _ selection.Field) {
			s.publish(EventElevation, st.Revision, s.chart.Model(st))
		}),
	)
	s.terrain.Mount(ctx)
	return s
}

// Controller exposes the selection state shared by the session's views.
func (s *Session) Controller() *selection.Controller {
	return s.ctrl
}

func (s *Session) Select(name string) error {
	return s.mapView.Click(name)
}

// Deselect is the chart's close affordance.
func (s *Session) Deselect() {
	s.chart.Close()
}

func (s *Session) PointerMove(x float64) {
	s.chart.PointerMove(x)
}

func (s *Session) PointerLeave() {
	s.chart.PointerLeave()
}

func (s *Session) MapModel() mapview.Model {
	return s.mapView.Model(s.ctrl.State())
}

func (s *Session) ElevationModel() elevation.Model {
	return s.chart.Model(s.ctrl.State())
}

func (s *Session) TerrainFrame() terrain.Frame {
	return s.terrain.Frame()
}

// LiveGeometry is the number of terrain buffers the session holds.
func (s *Session) LiveGeometry() int {
	return s.resources.Live()
}

// Handle applies one inbound websocket message.
func (s *Session) Handle(raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	switch msg.Type {
	case "select":
		return s.Select(msg.Name)
	case "hover":
		if msg.X == nil {
			return ErrMissingOffset
		}
		s.PointerMove(*msg.X)
	case "leave":
		s.PointerLeave()
	case "close":
		s.Deselect()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

// Snapshot encodes the current models so a new client can catch up.
func (s *Session) Snapshot() [][]byte {
	st := s.ctrl.State()
	frame := s.terrain.Frame()
	out := make([][]byte, 0, 3)
	for _, ev := range []Event{
		{Type: EventMap, Session: s.ID, Revision: st.Revision, Payload: s.mapView.Model(st)},
		{Type: EventElevation, Session: s.ID, Revision: st.Revision, Payload: s.chart.Model(st)},
		{Type: EventTerrain, Session: s.ID, Revision: frame.Revision, Payload: frame},
	} {
		b, err := json.Marshal(ev)
		if err != nil {
			logging.L().Error("encode snapshot event", zap.String("type", ev.Type), zap.Error(err))
			continue
		}
		out = append(out, b)
	}
	return out
}

// Close unmounts the terrain view, cancels held hover reports and
// detaches every view from the controller.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.terrain.Unmount()
		s.chart.Teardown()
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.publish(EventClosed, s.ctrl.State().Revision, nil)
	})
}

func (s *Session) publish(kind string, revision uint64, payload any) {
	if s.pub == nil {
		return
	}
	b, err := json.Marshal(Event{Type: kind, Session: s.ID, Revision: revision, Payload: payload})
	if err != nil {
		logging.L().Error("encode view event", zap.String("session", s.ID), zap.String("type", kind), zap.Error(err))
		return
	}
	s.pub.Broadcast(s.ID, b)
}

// frameForwarder is the terrain renderer of a remote client: it pushes a
// frame only when the scene changed since the last one.
type frameForwarder struct {
	session *Session

	mu   sync.Mutex
	last uint64
	sent bool
}

func (f *frameForwarder) Render(frame terrain.Frame) error {
	f.mu.Lock()
	if f.sent && frame.Revision == f.last {
		f.mu.Unlock()
		return nil
	}
	f.last = frame.Revision
	f.sent = true
	f.mu.Unlock()

	f.session.publish(EventTerrain, frame.Revision, frame)
	return nil
}
