package trail

import (
	"errors"
	"sync/atomic"

	"backend-trailview/internal/logging"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("trail not found")

// Store is an ordered, read-only set of trails keyed by name.
type Store struct {
	trails []Trail
	byName map[string]int
}

// NewStore copies trails into a new store. A repeated name keeps the first row.
func NewStore(trails []Trail) *Store {
	s := &Store{
		trails: make([]Trail, 0, len(trails)),
		byName: make(map[string]int, len(trails)),
	}
	for _, t := range trails {
		if _, dup := s.byName[t.Name]; dup {
			logging.L().Warn("duplicate trail name skipped", zap.String("name", t.Name))
			continue
		}
		s.byName[t.Name] = len(s.trails)
		s.trails = append(s.trails, t)
	}
	return s
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.trails)
}

// All returns the trails in load order.
func (s *Store) All() []Trail {
	if s == nil {
		return nil
	}
	out := make([]Trail, len(s.trails))
	copy(out, s.trails)
	return out
}

func (s *Store) Summaries() []Summary {
	if s == nil {
		return []Summary{}
	}
	return lo.Map(s.trails, func(t Trail, _ int) Summary { return t.Summary() })
}

// Lookup returns the stored record for name. The pointer must not be written through.
func (s *Store) Lookup(name string) (*Trail, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	i, ok := s.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &s.trails[i], nil
}

// Catalog publishes the current store. Replacing it never mutates a
// store that readers may still hold.
type Catalog struct {
	current atomic.Pointer[Store]
}

func NewCatalog(s *Store) *Catalog {
	c := &Catalog{}
	if s == nil {
		s = NewStore(nil)
	}
	c.current.Store(s)
	return c
}

func (c *Catalog) Current() *Store {
	return c.current.Load()
}

func (c *Catalog) Replace(s *Store) {
	c.current.Store(s)
}
