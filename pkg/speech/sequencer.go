package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Outcome is how a speech request ended.
type Outcome int

const (
	// OutcomeSkipped means the text was empty or already being spoken.
	OutcomeSkipped Outcome = iota
	// OutcomeSpoken means the engine played the text to the end.
	OutcomeSpoken
	// OutcomeSuperseded means a newer request replaced this one.
	OutcomeSuperseded
	// OutcomeStopped means Stop, Dispose or the caller's context ended it.
	OutcomeStopped
	// OutcomeFailed means the engine reported an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSpoken:
		return "spoken"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeStopped:
		return "stopped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes a finished request.
type Result struct {
	ID      string
	Text    string
	Outcome Outcome
	Err     error
}

type request struct {
	id   string
	text string
	done chan struct{}

	timer      Timer
	started    bool
	superseded bool
	stopped    bool
	resolved   bool

	outcome Outcome
	err     error
}

// Sequencer plays at most one utterance at a time through an Engine.
//
// Speak cancels the active utterance, waits the settle delay and then starts
// the new text. A request still waiting out its delay is dropped when a newer
// one arrives.
type Sequencer struct {
	engine Engine
	cfg    *Config
	logger *slog.Logger

	// engineMu serializes engine Speak and Cancel calls. Engine callbacks
	// only take mu.
	engineMu sync.Mutex

	mu       sync.Mutex
	current  *request
	pending  map[string]*request
	lastErr  error
	disposed bool
	onStart  func(Result)
	onDone   func(Result)
}

// NewSequencer creates a sequencer speaking through engine.
func NewSequencer(engine Engine, opts ...Option) (*Sequencer, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Sequencer{
		engine:  engine,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "speech.sequencer"),
		pending: make(map[string]*request),
	}, nil
}

// OnStart registers a callback invoked when the engine starts an utterance.
func (s *Sequencer) OnStart(fn func(Result)) {
	s.mu.Lock()
	s.onStart = fn
	s.mu.Unlock()
}

// OnDone registers a callback invoked once per finished request.
func (s *Sequencer) OnDone(fn func(Result)) {
	s.mu.Lock()
	s.onDone = fn
	s.mu.Unlock()
}

// Speak queues text and blocks until the request finishes.
//
// An engine interruption caused by a newer request or by Stop is not an error:
// the outcome is OutcomeSuperseded or OutcomeStopped. When ctx ends first the
// request is abandoned and Speak returns OutcomeStopped with ctx's error.
func (s *Sequencer) Speak(ctx context.Context, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn("empty text, nothing to speak")
		return OutcomeSkipped, nil
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return OutcomeFailed, ErrDisposed
	}
	if prev := s.current; prev != nil && prev.text == text {
		s.mu.Unlock()
		s.logger.Debug("duplicate text, already speaking", "id", prev.id)
		return OutcomeSkipped, nil
	}

	req := &request{
		id:   uuid.NewString(),
		text: text,
		done: make(chan struct{}),
	}
	var results []Result
	if prev := s.current; prev != nil {
		prev.superseded = true
		if !prev.started {
			results = append(results, s.resolveLocked(prev, OutcomeSuperseded, nil))
		}
	}
	s.current = req
	s.pending[req.id] = req
	s.lastErr = nil
	s.mu.Unlock()
	s.notify(results)

	s.engineMu.Lock()
	if s.isCurrent(req) {
		s.engine.Cancel()
	}
	s.mu.Lock()
	if s.current == req && !req.resolved {
		req.timer = s.cfg.Clock.AfterFunc(s.cfg.SettleDelay, func() { s.begin(req) })
	}
	s.mu.Unlock()
	s.engineMu.Unlock()

	select {
	case <-req.done:
		return req.outcome, req.err
	case <-ctx.Done():
		s.abandon(req)
		return OutcomeStopped, ctx.Err()
	}
}

// Stop cancels playback and any request waiting to start.
func (s *Sequencer) Stop() {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	s.mu.Lock()
	var results []Result
	if req := s.current; req != nil {
		req.stopped = true
		if !req.started {
			results = append(results, s.resolveLocked(req, OutcomeStopped, nil))
		}
	}
	s.current = nil
	s.mu.Unlock()
	s.notify(results)

	s.engine.Cancel()
	if r, ok := s.engine.(Resumer); ok {
		r.Resume()
	}
}

// Dispose stops the sequencer for good. Unfinished requests resolve as
// stopped and later calls to Speak return ErrDisposed.
func (s *Sequencer) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	s.Stop()

	s.mu.Lock()
	results := make([]Result, 0, len(s.pending))
	for _, req := range s.pending {
		req.stopped = true
		results = append(results, s.resolveLocked(req, OutcomeStopped, nil))
	}
	s.mu.Unlock()
	s.notify(results)
}

// IsSpeaking reports whether a request is waiting or playing.
func (s *Sequencer) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Err returns the last engine failure since the most recent Speak.
func (s *Sequencer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// begin hands req to the engine once its settle delay elapsed.
func (s *Sequencer) begin(req *request) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	s.mu.Lock()
	if s.current != req || req.resolved || req.stopped {
		s.mu.Unlock()
		return
	}
	req.started = true
	req.timer = nil
	onStart := s.onStart
	s.mu.Unlock()

	u := Utterance{
		ID:     req.id,
		Text:   req.text,
		Lang:   s.cfg.Lang,
		Voice:  SelectVoice(s.engine.Voices(), s.cfg.PreferredVoices, s.cfg.Lang),
		Rate:   s.cfg.Rate,
		Pitch:  s.cfg.Pitch,
		Volume: s.cfg.Volume,
	}
	voice := ""
	if u.Voice != nil {
		voice = u.Voice.Name
	}
	s.logger.Debug("speaking", "id", req.id, "chars", len(req.text), "voice", voice)
	if onStart != nil {
		onStart(Result{ID: req.id, Text: req.text})
	}

	if err := s.engine.Speak(u, func(err error) { s.finish(req, err) }); err != nil {
		s.finish(req, err)
	}
}

// finish maps an engine completion onto req's outcome.
func (s *Sequencer) finish(req *request, err error) {
	s.mu.Lock()
	if req.resolved {
		s.mu.Unlock()
		return
	}

	var (
		outcome Outcome
		resErr  error
	)
	switch {
	case err == nil:
		outcome = OutcomeSpoken
	case errors.Is(err, ErrInterrupted) && req.superseded:
		outcome = OutcomeSuperseded
	case errors.Is(err, ErrInterrupted) && req.stopped:
		outcome = OutcomeStopped
	default:
		outcome = OutcomeFailed
		resErr = fmt.Errorf("speech: utterance %s: %w", req.id, err)
		s.lastErr = resErr
	}
	result := s.resolveLocked(req, outcome, resErr)
	s.mu.Unlock()

	if outcome == OutcomeFailed {
		s.logger.Error("speech failed", "id", req.id, "error", err)
	}
	s.notify([]Result{result})
}

// abandon ends req on behalf of a caller whose context finished.
func (s *Sequencer) abandon(req *request) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	s.mu.Lock()
	if req.resolved {
		s.mu.Unlock()
		return
	}
	req.stopped = true
	if !req.started {
		result := s.resolveLocked(req, OutcomeStopped, nil)
		s.mu.Unlock()
		s.notify([]Result{result})
		return
	}
	active := s.current == req
	s.mu.Unlock()

	if active {
		s.engine.Cancel()
	}
}

func (s *Sequencer) isCurrent(req *request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == req && !req.resolved
}

// resolveLocked records req's outcome and releases its waiter. Callers hold mu.
func (s *Sequencer) resolveLocked(req *request, outcome Outcome, err error) Result {
	req.resolved = true
	req.outcome = outcome
	req.err = err
	if req.timer != nil {
		req.timer.Stop()
		req.timer = nil
	}
	delete(s.pending, req.id)
	if s.current == req {
		s.current = nil
	}
	close(req.done)
	return Result{ID: req.id, Text: req.text, Outcome: outcome, Err: err}
}

func (s *Sequencer) notify(results []Result) {
	if len(results) == 0 {
		return
	}
	s.mu.Lock()
	onDone := s.onDone
	s.mu.Unlock()
	if onDone == nil {
		return
	}
	for _, r := range results {
		onDone(r)
	}
}
