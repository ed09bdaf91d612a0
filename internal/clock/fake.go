package clock

import (
	"sync"
	"time"
)

// Fake is a Clock that only moves when Advance is called
type Fake struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	waiters []*waiter
}

type waiter struct {
	deadline time.Time
	period   time.Duration // zero for one-shot timers
	ch       chan time.Time
	stopped  bool
}

// NewFake creates a fake clock starting at start
func NewFake(start time.Time) *Fake {
	f := &Fake{now: start}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Now returns the fake time
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that receives once the clock has advanced by d
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := &waiter{deadline: f.now.Add(d), ch: make(chan time.Time, 1)}
	if d <= 0 {
		w.ch <- f.now
		return w.ch
	}
	f.addWaiter(w)
	return w.ch
}

// NewTicker returns a ticker that fires each time the clock passes a multiple of d
func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	w := &waiter{deadline: f.now.Add(d), period: d, ch: make(chan time.Time, 1)}
	f.addWaiter(w)
	return &fakeTicker{clock: f, w: w}
}

// Advance moves the clock forward and fires every timer that became due.
// Ticks that find a full channel are dropped, like time.Ticker.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
	remaining := f.waiters[:0]
	for _, w := range f.waiters {
		if w.stopped {
			continue
		}
		for !w.deadline.After(f.now) {
			select {
			case w.ch <- w.deadline:
			default:
			}
			if w.period == 0 {
				w.stopped = true
				break
			}
			w.deadline = w.deadline.Add(w.period)
		}
		if !w.stopped {
			remaining = append(remaining, w)
		}
	}
	f.waiters = remaining
	f.cond.Broadcast()
}

// BlockUntil waits until at least n timers or tickers are pending.
// Tests use it to make sure a goroutine is parked on the clock before advancing.
func (f *Fake) BlockUntil(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.pending() < n {
		f.cond.Wait()
	}
}

// Pending returns the number of active timers and tickers
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending()
}

func (f *Fake) pending() int {
	n := 0
	for _, w := range f.waiters {
		if !w.stopped {
			n++
		}
	}
	return n
}

func (f *Fake) addWaiter(w *waiter) {
	f.waiters = append(f.waiters, w)
	f.cond.Broadcast()
}

type fakeTicker struct {
	clock *Fake
	w     *waiter
}

func (t *fakeTicker) C() <-chan time.Time { return t.w.ch }

func (t *fakeTicker) Reset(d time.Duration) {
	if d <= 0 {
		panic("clock: non-positive interval for Ticker.Reset")
	}
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	t.w.period = d
	t.w.deadline = t.clock.now.Add(d)
	if t.w.stopped {
		t.w.stopped = false
		t.clock.addWaiter(t.w)
	}
}

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.w.stopped {
		return
	}
	t.w.stopped = true
	for i, w := range t.clock.waiters {
		if w == t.w {
			t.clock.waiters = append(t.clock.waiters[:i], t.clock.waiters[i+1:]...)
			break
		}
	}
	t.clock.cond.Broadcast()
}
