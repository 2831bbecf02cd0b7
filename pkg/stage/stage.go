// Package stage is a headless host for orb renderers: a single-goroutine
// event loop with a per-tick frame scheduler and pointer/resize listeners.
package stage

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"
)

// Stage runs frame callbacks and posted tasks on one goroutine.
type Stage struct {
	interval time.Duration
	tasks    chan func()

	mu      sync.Mutex
	bounds  image.Rectangle
	nextID  uint64
	frames  []*frameReq
	due     []*frameReq
	pointer []pointerListener
	resize  []resizeListener
	present func(now time.Time)
}

type frameReq struct {
	id   uint64
	fn   func(time.Time)
	dead bool
}

type pointerListener struct {
	id uint64
	fn func(x, y float64)
}

type resizeListener struct {
	id uint64
	fn func(image.Rectangle)
}

// New creates a stage with the given container bounds, ticking at fps.
func New(bounds image.Rectangle, fps int) *Stage {
	if fps <= 0 {
		fps = 60
	}
	return &Stage{
		interval: time.Second / time.Duration(fps),
		tasks:    make(chan func(), 256),
		bounds:   bounds,
	}
}

// Interval returns the time between ticks.
func (s *Stage) Interval() time.Duration { return s.interval }

// Bounds returns the current container rectangle.
func (s *Stage) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// RequestFrame schedules fn for the next Step.
func (s *Stage) RequestFrame(fn func(now time.Time)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.frames = append(s.frames, &frameReq{id: id, fn: fn})
	return func() { s.cancelFrame(id) }
}

// cancelFrame drops a pending frame, or marks it dead if the current step
// has already taken it. Cancelling a frame that already ran is a no-op.
func (s *Stage) cancelFrame(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.frames {
		if f.id == id {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return
		}
	}
	for _, f := range s.due {
		if f.id == id {
			f.dead = true
			return
		}
	}
}

// OnPointerMove registers a pointer listener.
func (s *Stage) OnPointerMove(fn func(x, y float64)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.pointer = append(s.pointer, pointerListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.pointer {
			if l.id == id {
				s.pointer = append(s.pointer[:i], s.pointer[i+1:]...)
				return
			}
		}
	}
}

// OnResize registers a resize listener.
func (s *Stage) OnResize(fn func(bounds image.Rectangle)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.resize = append(s.resize, resizeListener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.resize {
			if l.id == id {
				s.resize = append(s.resize[:i], s.resize[i+1:]...)
				return
			}
		}
	}
}

// SetPresenter installs a hook called after every Step that ran a frame,
// typically to push the finished surface to a display.
func (s *Stage) SetPresenter(fn func(now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present = fn
}

// MovePointer delivers a pointer position to every listener. Call it on the
// loop goroutine (directly before Run, or through Post).
func (s *Stage) MovePointer(x, y float64) {
	s.mu.Lock()
	ls := make([]pointerListener, len(s.pointer))
	copy(ls, s.pointer)
	s.mu.Unlock()

	for _, l := range ls {
		l.fn(x, y)
	}
}

// Resize records new container bounds and notifies listeners.
func (s *Stage) Resize(bounds image.Rectangle) {
	s.mu.Lock()
	s.bounds = bounds
	ls := make([]resizeListener, len(s.resize))
	copy(ls, s.resize)
	s.mu.Unlock()

	for _, l := range ls {
		l.fn(bounds)
	}
}

// Step runs the frames that were pending when it was called. Frames
// requested during the step wait for the next one. It reports how many ran.
func (s *Stage) Step(now time.Time) int {
	s.mu.Lock()
	due := s.frames
	s.frames = nil
	s.due = due
	s.mu.Unlock()

	ran := 0
	for _, f := range due {
		s.mu.Lock()
		dead := f.dead
		s.mu.Unlock()
		if dead {
			continue
		}
		f.fn(now)
		ran++
	}

	s.mu.Lock()
	s.due = nil
	present := s.present
	s.mu.Unlock()
	if ran > 0 && present != nil {
		present(now)
	}
	return ran
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full.
func (s *Stage) Post(fn func()) {
	s.tasks <- fn
}

// Run ticks until ctx is cancelled, interleaving posted tasks with frames.
func (s *Stage) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("invalid frame interval: %v", s.interval)
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.tasks:
			fn()
		case now := <-t.C:
			s.Step(now)
		}
	}
}

// RunFrames steps n times on a synthetic clock without sleeping.
func (s *Stage) RunFrames(start time.Time, n int) {
	for i := range n {
		s.drain()
		s.Step(start.Add(time.Duration(i) * s.interval))
	}
}

func (s *Stage) drain() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		default:
			return
		}
	}
}

// PendingFrames returns the number of scheduled frame callbacks.
func (s *Stage) PendingFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Listeners returns the number of registered pointer and resize listeners.
func (s *Stage) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pointer) + len(s.resize)
}
