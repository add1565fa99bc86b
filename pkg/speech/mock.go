package speech

import (
	"sort"
	"sync"
	"time"
)

// Mock implements Engine for testing. Utterances stay active until Complete
// or Cancel is called.
type Mock struct {
	// SpeakErr, when set, is returned by Speak instead of starting playback.
	SpeakErr error

	mu      sync.Mutex
	voices  []Voice
	spoken  []Utterance
	active  *mockUtterance
	cancels int
	resumes int
}

type mockUtterance struct {
	u    Utterance
	done func(error)
}

// NewMock creates a mock engine offering voices.
func NewMock(voices ...Voice) *Mock {
	return &Mock{voices: voices}
}

// Speak records u and makes it the active utterance.
func (m *Mock) Speak(u Utterance, done func(error)) error {
	m.mu.Lock()
	if m.SpeakErr != nil {
		err := m.SpeakErr
		m.mu.Unlock()
		return err
	}
	m.spoken = append(m.spoken, u)
	m.active = &mockUtterance{u: u, done: done}
	m.mu.Unlock()
	return nil
}

// Cancel interrupts the active utterance.
func (m *Mock) Cancel() {
	m.mu.Lock()
	m.cancels++
	a := m.active
	m.active = nil
	m.mu.Unlock()

	if a != nil {
		a.done(interrupted())
	}
}

// Resume records the call.
func (m *Mock) Resume() {
	m.mu.Lock()
	m.resumes++
	m.mu.Unlock()
}

// Voices returns the configured voices.
func (m *Mock) Voices() []Voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Voice(nil), m.voices...)
}

// Complete finishes the active utterance with err. It returns false when
// nothing is playing.
func (m *Mock) Complete(err error) bool {
	m.mu.Lock()
	a := m.active
	m.active = nil
	m.mu.Unlock()

	if a == nil {
		return false
	}
	a.done(err)
	return true
}

// Active returns the utterance currently playing.
func (m *Mock) Active() (Utterance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Utterance{}, false
	}
	return m.active.u, true
}

// Spoken returns every utterance passed to Speak.
func (m *Mock) Spoken() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Utterance(nil), m.spoken...)
}

// Cancels returns how many times Cancel was called.
func (m *Mock) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// Resumes returns how many times Resume was called.
func (m *Mock) Resumes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumes
}

// ManualClock is a Clock whose time only moves when Advance is called.
// Due calls run synchronously on the goroutine calling Advance.
type ManualClock struct {
	mu        sync.Mutex
	now       time.Duration
	timers    []*manualTimer
	scheduled int
}

type manualTimer struct {
	clock *ManualClock
	at    time.Duration
	f     func()
	done  bool
}

// NewManualClock creates a clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc implements Clock.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	c.scheduled++
	return t
}

// Advance moves time forward by d and runs every call that became due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	keep := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.done:
		case t.at <= c.now:
			t.done = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	c.timers = keep
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Pending returns how many calls are scheduled and not stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// Scheduled returns how many calls were ever scheduled.
func (c *ManualClock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scheduled
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Verify Mock implements Engine at compile time.
var (
	_ Engine  = (*Mock)(nil)
	_ Resumer = (*Mock)(nil)
	_ Clock   = (*ManualClock)(nil)
)
