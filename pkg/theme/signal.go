// Package theme provides the light/dark signal the orb renderer observes.
package theme

import "sync"

// Signal is a boolean "dark mode" flag with push notification on change.
// Subscribers are called synchronously from Set, in subscription order.
type Signal struct {
	mu   sync.Mutex
	dark bool
	next uint64
	subs []subscriber
}

type subscriber struct {
	id uint64
	fn func(dark bool)
}

// NewSignal creates a signal with the given initial value.
func NewSignal(dark bool) *Signal {
	return &Signal{dark: dark}
}

// Dark reports the current value.
func (s *Signal) Dark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Set updates the value. Subscribers only hear about actual changes.
func (s *Signal) Set(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(dark)
	}
}

// Toggle flips the value and returns the new one.
func (s *Signal) Toggle() bool {
	s.mu.Lock()
	dark := !s.dark
	s.mu.Unlock()
	s.Set(dark)
	return dark
}

// Subscribe registers fn for change notifications. The returned cancel
// function removes it and may be called more than once.
func (s *Signal) Subscribe(fn func(dark bool)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
