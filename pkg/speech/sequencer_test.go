package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type speakResult struct {
	outcome Outcome
	err     error
}

func newTestSequencer(t *testing.T, voices ...Voice) (*Sequencer, *Mock, *ManualClock) {
	t.Helper()
	eng := NewMock(voices...)
	clk := NewManualClock()
	seq, err := NewSequencer(eng, WithClock(clk))
	require.NoError(t, err)
	return seq, eng, clk
}

// speakAsync starts Speak and waits until its settle timer is armed.
func speakAsync(t *testing.T, seq *Sequencer, clk *ManualClock, text string) <-chan speakResult {
	t.Helper()
	before := clk.Scheduled()
	ch := make(chan speakResult, 1)
	go func() {
		o, err := seq.Speak(context.Background(), text)
		ch <- speakResult{o, err}
	}()
	require.Eventually(t, func() bool { return clk.Scheduled() > before },
		time.Second, time.Millisecond)
	return ch
}

func recv(t *testing.T, ch <-chan speakResult) speakResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		t.Fatal("Speak did not return")
		return speakResult{}
	}
}

func TestNewSequencerRequiresEngine(t *testing.T) {
	_, err := NewSequencer(nil)
	assert.ErrorIs(t, err, ErrNoEngine)
}

func TestSpeakWaitsSettleDelay(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "Olá!")
	clk.Advance(99 * time.Millisecond)
	_, active := eng.Active()
	assert.False(t, active, "engine started before the settle delay")

	clk.Advance(time.Millisecond)
	u, active := eng.Active()
	require.True(t, active)
	assert.Equal(t, "Olá!", u.Text)
	assert.Equal(t, DefaultLang, u.Lang)
	assert.Equal(t, 1.0, u.Rate)
	assert.Equal(t, 1.0, u.Pitch)
	assert.Equal(t, 1.0, u.Volume)
	assert.True(t, seq.IsSpeaking())

	require.True(t, eng.Complete(nil))
	r := recv(t, ch)
	assert.Equal(t, OutcomeSpoken, r.outcome)
	assert.NoError(t, r.err)
	assert.False(t, seq.IsSpeaking())
}

func TestSecondRequestSupersedesPlayback(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	var mu sync.Mutex
	var results []Result
	seq.OnDone(func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	first := speakAsync(t, seq, clk, "primeira")
	clk.Advance(DefaultSettleDelay)
	require.Len(t, eng.Spoken(), 1)

	second := speakAsync(t, seq, clk, "segunda")
	r1 := recv(t, first)
	assert.Equal(t, OutcomeSuperseded, r1.outcome)
	assert.NoError(t, r1.err)

	clk.Advance(DefaultSettleDelay)
	u, active := eng.Active()
	require.True(t, active)
	assert.Equal(t, "segunda", u.Text)
	eng.Complete(nil)

	r2 := recv(t, second)
	assert.Equal(t, OutcomeSpoken, r2.outcome)
	assert.NoError(t, seq.Err())

	mu.Lock()
	defer mu.Unlock()
	spoken := 0
	for _, r := range results {
		assert.NotEqual(t, OutcomeFailed, r.Outcome)
		if r.Outcome == OutcomeSpoken {
			spoken++
		}
	}
	assert.Equal(t, 1, spoken)
}

func TestNewerRequestDropsPendingTimer(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	first := speakAsync(t, seq, clk, "um")
	second := speakAsync(t, seq, clk, "dois")

	r1 := recv(t, first)
	assert.Equal(t, OutcomeSuperseded, r1.outcome)
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(DefaultSettleDelay)
	eng.Complete(nil)
	assert.Equal(t, OutcomeSpoken, recv(t, second).outcome)

	spoken := eng.Spoken()
	require.Len(t, spoken, 1)
	assert.Equal(t, "dois", spoken[0].Text)
}

func TestStopDuringPlayback(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "texto longo")
	clk.Advance(DefaultSettleDelay)
	seq.Stop()

	r := recv(t, ch)
	assert.Equal(t, OutcomeStopped, r.outcome)
	assert.NoError(t, r.err)
	assert.False(t, seq.IsSpeaking())
	assert.Equal(t, 1, eng.Resumes())
	assert.NoError(t, seq.Err())
}

func TestStopBeforeSettle(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "nunca")
	seq.Stop()
	assert.Equal(t, OutcomeStopped, recv(t, ch).outcome)

	clk.Advance(time.Second)
	assert.Empty(t, eng.Spoken())
}

func TestEngineFailure(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "falha")
	clk.Advance(DefaultSettleDelay)
	eng.Complete(&EngineError{Code: CodeFailed, Message: "no audio device"})

	r := recv(t, ch)
	assert.Equal(t, OutcomeFailed, r.outcome)
	var engErr *EngineError
	require.ErrorAs(t, r.err, &engErr)
	assert.Equal(t, CodeFailed, engErr.Code)
	assert.Equal(t, r.err, seq.Err())
}

func TestUnexplainedInterruptionFails(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "interrompido")
	clk.Advance(DefaultSettleDelay)
	eng.Complete(&EngineError{Code: CodeCanceled})

	r := recv(t, ch)
	assert.Equal(t, OutcomeFailed, r.outcome)
	assert.ErrorIs(t, r.err, ErrInterrupted)
}

func TestSpeakErrorFails(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)
	eng.SpeakErr = errors.New("busy")

	ch := speakAsync(t, seq, clk, "oi")
	clk.Advance(DefaultSettleDelay)

	r := recv(t, ch)
	assert.Equal(t, OutcomeFailed, r.outcome)
	assert.ErrorContains(t, r.err, "busy")
}

func TestEmptyTextSkipped(t *testing.T) {
	seq, eng, _ := newTestSequencer(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		o, err := seq.Speak(context.Background(), text)
		assert.Equal(t, OutcomeSkipped, o)
		assert.NoError(t, err)
	}
	assert.Zero(t, eng.Cancels())
	assert.False(t, seq.IsSpeaking())
}

func TestDuplicateTextSkipped(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "mesmo texto")
	o, err := seq.Speak(context.Background(), "  mesmo texto ")
	assert.Equal(t, OutcomeSkipped, o)
	assert.NoError(t, err)

	clk.Advance(DefaultSettleDelay)
	eng.Complete(nil)
	assert.Equal(t, OutcomeSpoken, recv(t, ch).outcome)
	assert.Len(t, eng.Spoken(), 1)
}

func TestContextCancelAbandonsRequest(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan speakResult, 1)
	go func() {
		o, err := seq.Speak(ctx, "cancelado")
		ch <- speakResult{o, err}
	}()
	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(DefaultSettleDelay)
	cancel()

	r := recv(t, ch)
	assert.Equal(t, OutcomeStopped, r.outcome)
	assert.ErrorIs(t, r.err, context.Canceled)
	require.Eventually(t, func() bool { return !seq.IsSpeaking() }, time.Second, time.Millisecond)
	_, active := eng.Active()
	assert.False(t, active)
}

func TestDispose(t *testing.T) {
	seq, eng, clk := newTestSequencer(t)

	ch := speakAsync(t, seq, clk, "adeus")
	seq.Dispose()
	assert.Equal(t, OutcomeStopped, recv(t, ch).outcome)

	o, err := seq.Speak(context.Background(), "de novo")
	assert.Equal(t, OutcomeFailed, o)
	assert.ErrorIs(t, err, ErrDisposed)

	clk.Advance(time.Second)
	assert.Empty(t, eng.Spoken())
	seq.Dispose()
}

func TestUtteranceUsesPreferredVoice(t *testing.T) {
	seq, eng, clk := newTestSequencer(t,
		Voice{Name: "Google US English", Lang: "en-US"},
		Voice{Name: "Google português do Brasil", Lang: "pt-BR"},
	)
	var started []Result
	seq.OnStart(func(r Result) { started = append(started, r) })

	ch := speakAsync(t, seq, clk, "voz")
	clk.Advance(DefaultSettleDelay)
	u, _ := eng.Active()
	require.NotNil(t, u.Voice)
	assert.Equal(t, "Google português do Brasil", u.Voice.Name)
	require.Len(t, started, 1)
	assert.Equal(t, "voz", started[0].Text)

	eng.Complete(nil)
	recv(t, ch)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "superseded", OutcomeSuperseded.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
