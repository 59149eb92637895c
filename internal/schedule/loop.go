// Package schedule is the single-threaded frame scheduler shared by the render
// loop and the subsystems it drives. Nothing runs on its own goroutine: frame
// callbacks and intervals fire from Loop.Step, called once per displayed frame.
package schedule

import (
	"sync"
	"time"

	"lod-engine/internal/clock"
)

// FrameFunc is a per-frame callback. now is the frame timestamp.
type FrameFunc func(now time.Time)

// FrameID identifies a pending frame request. Zero is never issued.
type FrameID uint64

// Scheduler is what subsystems need from the host frame loop.
type Scheduler interface {
	// RequestFrame schedules fn to run once on the next frame.
	RequestFrame(fn FrameFunc) FrameID
	// CancelFrame drops a pending request. Unknown ids are ignored.
	CancelFrame(id FrameID)
	// Every runs fn on the frame loop each time at least d has elapsed.
	// The returned func cancels it and is safe to call more than once.
	Every(d time.Duration, fn func()) (cancel func())
}

type frameRequest struct {
	id FrameID
	fn FrameFunc
}

type interval struct {
	period    time.Duration
	last      time.Time
	fn        func()
	cancelled bool
}

// Loop implements Scheduler. Step runs one frame.
type Loop struct {
	mu        sync.Mutex
	clock     clock.Clock
	nextID    FrameID
	pending   []frameRequest
	intervals []*interval
	frames    uint64
}

// NewLoop returns a Loop reading time from c (clock.Real{} when nil).
func NewLoop(c clock.Clock) *Loop {
	if c == nil {
		c = clock.Real{}
	}
	return &Loop{clock: c}
}

// Clock returns the clock the loop stamps frames with.
func (l *Loop) Clock() clock.Clock {
	return l.clock
}

// RequestFrame implements Scheduler.
func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.pending = append(l.pending, frameRequest{id: l.nextID, fn: fn})
	return l.nextID
}

// CancelFrame implements Scheduler.
func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.pending {
		if r.id == id {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return
		}
	}
}

// Every implements Scheduler. The first run happens d after registration.
func (l *Loop) Every(d time.Duration, fn func()) (cancel func()) {
	iv := &interval{period: d, last: l.clock.Now(), fn: fn}
	l.mu.Lock()
	l.intervals = append(l.intervals, iv)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		iv.cancelled = true
		for i, x := range l.intervals {
			if x == iv {
				l.intervals = append(l.intervals[:i], l.intervals[i+1:]...)
				break
			}
		}
	}
}

// Step runs one frame: every request pending at entry, then every due interval.
// Frames requested while stepping run on the next Step.
func (l *Loop) Step() {
	now := l.clock.Now()

	l.mu.Lock()
	l.frames++
	batch := l.pending
	l.pending = nil
	due := make([]*interval, 0, len(l.intervals))
	for _, iv := range l.intervals {
		if now.Sub(iv.last) >= iv.period {
			iv.last = now
			due = append(due, iv)
		}
	}
	l.mu.Unlock()

	for _, r := range batch {
		r.fn(now)
	}
	for _, iv := range due {
		l.mu.Lock()
		cancelled := iv.cancelled
		l.mu.Unlock()
		if !cancelled {
			iv.fn()
		}
	}
}

// Pending returns the number of frame requests waiting for the next Step.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Intervals returns the number of active intervals.
func (l *Loop) Intervals() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.intervals)
}

// Frames returns how many times Step has run.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}
