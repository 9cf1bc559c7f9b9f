package countdown

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is how often an active engine re-derives its breakdown.
const DefaultInterval = time.Second

// Engine keeps a Breakdown of a fixed target current while active. It owns at
// most one scheduler handle at a time.
type Engine struct {
	target   time.Time
	clock    Clock
	sched    Scheduler
	interval time.Duration
	logger   *log.Logger

	// tickMu spans a scheduled refresh including its notifications, so Stop
	// returns only once no tick is in flight.
	tickMu sync.Mutex

	mu         sync.Mutex
	active     bool
	handle     Handle
	gen        uint64
	snap       Breakdown
	done       bool
	subs       map[int]func(Breakdown)
	nextSub    int
	onComplete []func()
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an inactive engine counting down to target. The initial
// snapshot is derived immediately so callers can render before Start.
func NewEngine(target time.Time, opts ...Option) *Engine {
	e := &Engine{
		target:   target,
		clock:    SystemClock{},
		interval: DefaultInterval,
		logger:   log.New(io.Discard),
		subs:     make(map[int]func(Breakdown)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewTickerScheduler()
	}
	e.snap = Derive(e.target, e.clock.Now())
	e.done = e.snap.Done()
	return e
}

// Start registers the recurring refresh and derives a fresh snapshot. Calling
// Start on an active engine does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return
	}
	e.active = true
	e.gen++
	gen := e.gen
	e.handle = e.sched.Schedule(e.interval, func() { e.tick(gen) })
	e.logger.Debug("countdown started", "target", e.target.Format(time.RFC3339), "interval", e.interval)
	e.mu.Unlock()

	e.refresh(0)
}

// Stop cancels the recurring refresh and waits for an in-flight tick to
// finish delivering. Calling Stop on an inactive engine does nothing. Stop
// must not be called from a subscriber or completion callback.
func (e *Engine) Stop() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	e.sched.Cancel(e.handle)
	e.active = false
	e.handle = 0
	e.logger.Debug("countdown stopped", "target", e.target.Format(time.RFC3339))
}

func (e *Engine) tick(gen uint64) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	e.refresh(gen)
}

// Refresh re-derives the snapshot now, outside the regular cadence.
func (e *Engine) Refresh() Breakdown {
	return e.refresh(0)
}

// refresh derives and publishes a snapshot. A non-zero gen identifies a
// scheduled tick, which is dropped unless it belongs to the live schedule.
func (e *Engine) refresh(gen uint64) Breakdown {
	e.mu.Lock()
	if gen != 0 && (!e.active || gen != e.gen) {
		b := e.snap
		e.mu.Unlock()
		return b
	}
	b := Derive(e.target, e.clock.Now())
	justDone := false
	switch {
	case e.done:
		// Completion latches even if the clock moves backwards.
		b = Breakdown{}
	case b.Done():
		e.done = true
		justDone = true
	}
	e.snap = b

	subs := make([]func(Breakdown), 0, len(e.subs))
	for i := 0; i < e.nextSub; i++ {
		if fn, ok := e.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	var completes []func()
	if justDone {
		completes = append(completes, e.onComplete...)
		e.logger.Info("countdown complete", "target", e.target.Format(time.RFC3339))
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(b)
	}
	for _, fn := range completes {
		fn()
	}
	return b
}

// Subscribe registers fn to receive every refreshed snapshot.
func (e *Engine) Subscribe(fn func(Breakdown)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// OnComplete registers fn to run once, on the refresh where the remaining
// duration first reaches zero. If the engine is already complete fn runs
// immediately.
func (e *Engine) OnComplete(fn func()) {
	e.mu.Lock()
	if e.done {
		e.mu.Unlock()
		fn()
		return
	}
	e.onComplete = append(e.onComplete, fn)
	e.mu.Unlock()
}

func (e *Engine) Snapshot() Breakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

func (e *Engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) Target() time.Time {
	return e.target
}
