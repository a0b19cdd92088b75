// Package terrain keeps the 3D scene of the selected trail: a reference
// grid, lights, a camera and the projected track polyline.
package terrain

import (
	"errors"
	"sync"

	"backend-trailview/internal/geometry"

	"github.com/google/uuid"
)

const (
	fov             = 50
	near            = 0.1
	far             = 10000
	gridDivisions   = 20
	projectionScale = 106

	TrackName = "current_track"
)

var ErrReleased = errors.New("geometry already released")

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Camera struct {
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Position Vec3    `json:"position"`
}

type Light struct {
	Kind      string  `json:"kind"`
	Color     uint32  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  *Vec3   `json:"position,omitempty"`
}

type Grid struct {
	Size      float64 `json:"size"`
	Divisions int     `json:"divisions"`
}

// Scene is the one-time setup done when the view is mounted.
type Scene struct {
	Camera Camera  `json:"camera"`
	Grid   Grid    `json:"grid"`
	Lights []Light `json:"lights"`
}

func NewScene(width, height float64) Scene {
	return Scene{
		Camera: Camera{
			FOV:      fov,
			Aspect:   width / height,
			Near:     near,
			Far:      far,
			Position: Vec3{X: -150, Y: 110, Z: 150},
		},
		Grid: Grid{Size: width, Divisions: gridDivisions},
		Lights: []Light{
			{Kind: "ambient", Color: 0xffffff, Intensity: 0.2},
			{Kind: "directional", Color: 0xffffff, Intensity: 0.8, Position: &Vec3{X: 1, Y: 1, Z: -1}},
		},
	}
}

// Project places a track in scene space. The horizontal plane is a
// mercator projection centered on the track; elevation uses the same
// pixels-per-foot ratio as the wider horizontal edge of the track.
func Project(track geometry.Track, width, height float64) []Vec3 {
	if track.Len() == 0 {
		return nil
	}
	spanFeet := geometry.SpanMiles(track) * geometry.FeetPerMile
	pixelsPerFoot := 0.0
	if spanFeet > 0 {
		pixelsPerFoot = width / spanFeet
	}
	proj := geometry.NewMercator(geometry.Bound(track).Center(), width*projectionScale, [2]float64{width / 2, height / 2})

	out := make([]Vec3, track.Len())
	for i, wp := range track {
		x, y := proj.Project(wp.Longitude, wp.Latitude)
		out[i] = Vec3{
			X: x - width/2,
			Y: wp.ElevationFeet * pixelsPerFoot,
			Z: y - height/2,
		}
	}
	return out
}

// Geometry is a vertex buffer owned by the rendering capability. It
// must be released exactly once.
type Geometry interface {
	ID() string
	Name() string
	Vertices() []Vec3
	Release() error
}

// Resources allocates geometry on the rendering capability.
type Resources interface {
	Acquire(name string, vertices []Vec3) (Geometry, error)
}

// MemoryResources keeps buffers in process memory and counts live ones.
type MemoryResources struct {
	mu   sync.Mutex
	live map[string]*memoryGeometry
}

func NewMemoryResources() *MemoryResources {
	return &MemoryResources{live: map[string]*memoryGeometry{}}
}

func (r *MemoryResources) Acquire(name string, vertices []Vec3) (Geometry, error) {
	g := &memoryGeometry{
		owner:    r,
		id:       uuid.NewString(),
		name:     name,
		vertices: append([]Vec3(nil), vertices...),
	}
	r.mu.Lock()
	r.live[g.id] = g
	r.mu.Unlock()
	return g, nil
}

// Live is the number of acquired, unreleased buffers.
func (r *MemoryResources) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

type memoryGeometry struct {
	owner    *MemoryResources
	id       string
	name     string
	vertices []Vec3
}

func (g *memoryGeometry) ID() string       { return g.id }
func (g *memoryGeometry) Name() string     { return g.name }
func (g *memoryGeometry) Vertices() []Vec3 { return g.vertices }

func (g *memoryGeometry) Release() error {
	g.owner.mu.Lock()
	defer g.owner.mu.Unlock()
	if _, ok := g.owner.live[g.id]; !ok {
		return ErrReleased
	}
	delete(g.owner.live, g.id)
	return nil
}
