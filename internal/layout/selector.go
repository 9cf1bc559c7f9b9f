package layout

import "sync"

// Selector tracks the layout mode for a threshold against a WidthSource. It
// subscribes once on creation and must be closed to release the subscription.
type Selector struct {
	threshold Threshold

	mu          sync.Mutex
	mode        Mode
	listeners   []func(Mode)
	unsubscribe func()
}

func NewSelector(th Threshold, src WidthSource) *Selector {
	s := &Selector{
		threshold: th,
		mode:      Select(th, src.CurrentWidth()),
	}
	s.unsubscribe = src.OnChange(s.evaluate)
	return s
}

func (s *Selector) evaluate(width int) {
	next := Select(s.threshold, width)

	s.mu.Lock()
	if next == s.mode {
		s.mu.Unlock()
		return
	}
	s.mode = next
	fns := append([]func(Mode){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

func (s *Selector) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Selector) Threshold() Threshold {
	return s.threshold
}

// OnModeChange registers fn to run whenever the mode flips.
func (s *Selector) OnModeChange(fn func(Mode)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Close stops observing the width source. It is safe to call more than once.
func (s *Selector) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
