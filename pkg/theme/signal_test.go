package theme

import "testing"

func TestSignalNotifiesOnChangeOnly(t *testing.T) {
	s := NewSignal(false)
	var got []bool
	cancel := s.Subscribe(func(dark bool) { got = append(got, dark) })
	defer cancel()

	s.Set(false) // no change
	s.Set(true)
	s.Set(true) // no change
	s.Set(false)

	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("notifications = %v, want [true false]", got)
	}
}

func TestSignalToggle(t *testing.T) {
	s := NewSignal(true)
	if s.Toggle() {
		t.Error("Toggle from true should return false")
	}
	if s.Dark() {
		t.Error("Dark() should be false after toggle")
	}
}

func TestSignalCancel(t *testing.T) {
	s := NewSignal(false)
	calls := 0
	cancel := s.Subscribe(func(bool) { calls++ })
	other := s.Subscribe(func(bool) {})

	cancel()
	cancel() // idempotent
	s.Set(true)

	if calls != 0 {
		t.Errorf("cancelled subscriber called %d times", calls)
	}
	if n := s.Subscribers(); n != 1 {
		t.Errorf("Subscribers() = %d, want 1", n)
	}
	other()
	if n := s.Subscribers(); n != 0 {
		t.Errorf("Subscribers() = %d, want 0", n)
	}
}

func TestSignalSubscriptionOrder(t *testing.T) {
	s := NewSignal(false)
	var order []int
	for i := range 3 {
		s.Subscribe(func(bool) { order = append(order, i) })
	}
	s.Set(true)

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want [0 1 2]", order)
		}
	}
}
