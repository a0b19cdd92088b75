// Package selection owns the interaction state shared by the map,
// elevation and terrain views of one session.
package selection

import (
	"sync"

	"backend-trailview/internal/trail"
)

// Field names a part of State a listener depends on.
type Field uint8

const (
	FieldSelection Field = 1 << iota
	FieldHover

	FieldAll = FieldSelection | FieldHover
)

func (f Field) Has(other Field) bool {
	return f&other != 0
}

// State is an immutable snapshot handed to listeners.
type State struct {
	Trail        *trail.Trail
	HoveredIndex int
	Hovered      bool
	Revision     uint64
}

func (s State) Selected() bool {
	return s.Trail != nil
}

// Hover reports the hovered index. It is never defined without a selection.
func (s State) Hover() (int, bool) {
	if s.Trail == nil || !s.Hovered {
		return 0, false
	}
	return s.HoveredIndex, true
}

// Listener receives the new state and the fields that changed.
type Listener func(state State, changed Field)

type subscription struct {
	id     uint64
	fields Field
	fn     Listener
}

// Controller is the single writer of a session's State. Every listener
// of a mutation sees the same snapshot before the next mutation starts.
// Listeners may call State but must not mutate synchronously.
type Controller struct {
	dispatch sync.Mutex

	mu     sync.Mutex
	state  State
	subs   []subscription
	nextID uint64
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for changes touching fields and returns a func
// that removes the subscription.
func (c *Controller) Subscribe(fields Field, fn Listener) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription{id: id, fields: fields, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SetSelectedTrail replaces the selection and clears the hover. Selecting
// the trail that is already selected does nothing.
func (c *Controller) SetSelectedTrail(t *trail.Trail) {
	c.update(func(s *State) Field {
		if trail.Same(s.Trail, t) {
			return 0
		}
		changed := FieldSelection
		if s.Hovered {
			changed |= FieldHover
		}
		s.Trail = t
		s.Hovered = false
		s.HoveredIndex = 0
		return changed
	})
}

// SetHoveredIndex stores index when it differs from the current hover.
// Without a selection there is nothing to hover and the call is ignored.
func (c *Controller) SetHoveredIndex(index int) {
	c.update(func(s *State) Field {
		if s.Trail == nil {
			return 0
		}
		if s.Hovered && s.HoveredIndex == index {
			return 0
		}
		s.Hovered = true
		s.HoveredIndex = index
		return FieldHover
	})
}

// SetHoveredIndexFor is SetHoveredIndex for an index resolved against t.
// It is dropped when the selection moved on to another trail meanwhile.
func (c *Controller) SetHoveredIndexFor(t *trail.Trail, index int) {
	c.update(func(s *State) Field {
		if s.Trail == nil || !trail.Same(s.Trail, t) {
			return 0
		}
		if s.Hovered && s.HoveredIndex == index {
			return 0
		}
		s.Hovered = true
		s.HoveredIndex = index
		return FieldHover
	})
}

func (c *Controller) ClearHover() {
	c.update(func(s *State) Field {
		if !s.Hovered {
			return 0
		}
		s.Hovered = false
		s.HoveredIndex = 0
		return FieldHover
	})
}

func (c *Controller) update(mutate func(*State) Field) {
	c.dispatch.Lock()
	defer c.dispatch.Unlock()

	c.mu.Lock()
	changed := mutate(&c.state)
	if changed == 0 {
		c.mu.Unlock()
		return
	}
	c.state.Revision++
	snapshot := c.state
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		if s.fields.Has(changed) {
			s.fn(snapshot, changed)
		}
	}
}
