package hover

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultPixelTolerance = 1.0
	DefaultInterval       = 50 * time.Millisecond
)

type timer interface {
	Stop() bool
}

var afterFunc = func(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	ChartWidth     float64
	PixelTolerance float64
	Interval       time.Duration
}

// Report receives a resolved index together with the waypoint count it
// was resolved against.
type Report func(index, n int)

// Tracker resolves every pointer move but reports an index only when the
// pointer travelled more than the pixel tolerance since the last accepted
// move, and at most once per interval. A move arriving inside the
// interval is held and reported when the interval ends; a newer move
// replaces it.
type Tracker struct {
	opts   Options
	report Report

	mu       sync.Mutex
	n        int
	lastX    float64
	hasLast  bool
	busy     bool
	pending  int
	queued   bool
	timer    timer
	stopped  bool
	resolved int
}

func NewTracker(opts Options, report Report) *Tracker {
	if opts.PixelTolerance < 0 {
		opts.PixelTolerance = DefaultPixelTolerance
	}
	return &Tracker{opts: opts, report: report}
}

// Reset points the tracker at a track of n waypoints and drops any held
// report computed for the previous track.
func (t *Tracker) Reset(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n = n
	t.hasLast = false
	t.queued = false
}

// Move handles one pointer event at offset x.
func (t *Tracker) Move(x float64) {
	t.mu.Lock()
	index, emit := t.moveLocked(x)
	n := t.n
	t.mu.Unlock()
	if emit {
		t.report(index, n)
	}
}

func (t *Tracker) moveLocked(x float64) (int, bool) {
	if t.stopped {
		return 0, false
	}
	index, ok := Resolve(x, t.opts.ChartWidth, t.n)
	if !ok {
		return 0, false
	}
	t.resolved++
	if t.hasLast && math.Abs(x-t.lastX) <= t.opts.PixelTolerance {
		return 0, false
	}
	t.lastX = x
	t.hasLast = true

	if t.busy {
		t.pending = index
		t.queued = true
		return 0, false
	}
	t.armLocked()
	return index, true
}

// Leave forgets the last offset so re-entering at the same spot reports again.
func (t *Tracker) Leave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hasLast = false
	t.queued = false
}

// Stop cancels a held report. Moves after Stop are ignored.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.queued = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Resolved counts moves that produced an index, reported or not.
func (t *Tracker) Resolved() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolved
}

// armLocked starts the interval during which further reports are held.
func (t *Tracker) armLocked() {
	if t.opts.Interval <= 0 {
		return
	}
	t.busy = true
	t.timer = afterFunc(t.opts.Interval, t.release)
}

func (t *Tracker) release() {
	t.mu.Lock()
	t.busy = false
	t.timer = nil
	if t.stopped || !t.queued {
		t.mu.Unlock()
		return
	}
	t.queued = false
	index, n := t.pending, t.n
	t.armLocked()
	t.mu.Unlock()

	t.report(index, n)
}
