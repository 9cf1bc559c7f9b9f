package countdown

import (
	"sort"
	"sync"
	"time"
)

// Handle identifies a scheduled recurring callback. The zero Handle is never
// issued.
type Handle uint64

// Scheduler runs callbacks on a fixed interval until cancelled.
type Scheduler interface {
	Schedule(interval time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// TickerScheduler backs each handle with a time.Ticker and a goroutine.
// Callbacks for one handle never overlap.
type TickerScheduler struct {
	mu    sync.Mutex
	next  Handle
	stops map[Handle]chan struct{}
}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{stops: make(map[Handle]chan struct{})}
}

func (s *TickerScheduler) Schedule(interval time.Duration, fn func()) Handle {
	s.mu.Lock()
	s.next++
	h := s.next
	stop := make(chan struct{})
	s.stops[h] = stop
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Cancel may race with a pending tick.
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

func (s *TickerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.stops[h]; ok {
		close(stop)
		delete(s.stops, h)
	}
}

// Active returns the number of live handles.
func (s *TickerScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stops)
}

// ManualScheduler only runs callbacks when Fire is called. Intervals are
// recorded but not enforced.
type ManualScheduler struct {
	mu        sync.Mutex
	next      Handle
	callbacks map[Handle]func()
	intervals map[Handle]time.Duration
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		callbacks: make(map[Handle]func()),
		intervals: make(map[Handle]time.Duration),
	}
}

func (m *ManualScheduler) Schedule(interval time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.callbacks[m.next] = fn
	m.intervals[m.next] = interval
	return m.next
}

func (m *ManualScheduler) Cancel(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.callbacks, h)
	delete(m.intervals, h)
}

// Fire runs every live callback once, in handle order, and returns how many
// ran.
func (m *ManualScheduler) Fire() int {
	m.mu.Lock()
	handles := make([]Handle, 0, len(m.callbacks))
	for h := range m.callbacks {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	fns := make([]func(), 0, len(handles))
	for _, h := range handles {
		fns = append(fns, m.callbacks[h])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Active returns the number of live handles.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.callbacks)
}

// Interval returns the interval a handle was scheduled with.
func (m *ManualScheduler) Interval(h Handle) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intervals[h]
}

var (
	_ Scheduler = (*TickerScheduler)(nil)
	_ Scheduler = (*ManualScheduler)(nil)
)
