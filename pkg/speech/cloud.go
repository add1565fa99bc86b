package speech

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-synth/pkg/tts"
)

// AudioSink plays synthesized audio on the page.
type AudioSink interface {
	PlayAudio(id string, audio []byte, format tts.AudioFormat) error
	StopAudio()
}

// Cloud is an Engine that synthesizes speech with a tts.Provider and streams
// the audio to an AudioSink. Playback is considered finished once the audio's
// duration has elapsed.
type Cloud struct {
	provider tts.Provider
	sink     AudioSink
	clock    Clock
	lang     string
	logger   *slog.Logger

	mu     sync.Mutex
	active *playback
}

type playback struct {
	id     string
	cancel context.CancelFunc
	timer  Timer
	once   sync.Once
	done   func(error)
}

// NewCloud creates a cloud engine. Only the clock, lang and logger options apply.
func NewCloud(provider tts.Provider, sink AudioSink, opts ...Option) *Cloud {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	return &Cloud{
		provider: provider,
		sink:     sink,
		clock:    cfg.Clock,
		lang:     cfg.Lang,
		logger:   cfg.Logger.With("component", "speech.cloud"),
	}
}

// Speak synthesizes u in the background and plays it.
func (c *Cloud) Speak(u Utterance, done func(error)) error {
	ctx, cancel := context.WithCancel(context.Background())
	p := &playback{id: u.ID, cancel: cancel, done: done}

	c.mu.Lock()
	prev := c.active
	c.active = p
	c.mu.Unlock()

	if prev != nil {
		c.interrupt(prev)
	}

	go c.run(ctx, p, u)
	return nil
}

func (c *Cloud) run(ctx context.Context, p *playback, u Utterance) {
	res, err := c.provider.Synthesize(ctx, u.Text)
	if err != nil {
		if ctx.Err() == nil {
			c.complete(p, err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	if err := c.sink.PlayAudio(u.ID, res.Audio, res.Format); err != nil {
		c.complete(p, err)
		return
	}

	d := res.Duration
	if d <= 0 {
		d = tts.EstimateDuration(u.Text)
	}
	if u.Rate > 0 {
		d = time.Duration(float64(d) / u.Rate)
	}
	c.logger.Debug("playing audio", "id", u.ID, "bytes", len(res.Audio), "duration", d)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != p {
		return
	}
	p.timer = c.clock.AfterFunc(d, func() { c.complete(p, nil) })
}

// Cancel stops the active playback.
func (c *Cloud) Cancel() {
	c.mu.Lock()
	p := c.active
	c.active = nil
	c.mu.Unlock()

	if p != nil {
		c.interrupt(p)
	}
}

// Voices reports the provider's voice.
func (c *Cloud) Voices() []Voice {
	return []Voice{{Name: c.provider.Voice(), Lang: c.lang, Default: true}}
}

func (c *Cloud) interrupt(p *playback) {
	c.mu.Lock()
	t := p.timer
	c.mu.Unlock()
	if t != nil {
		t.Stop()
	}
	p.cancel()
	c.sink.StopAudio()
	p.once.Do(func() { p.done(interrupted()) })
}

func (c *Cloud) complete(p *playback, err error) {
	c.mu.Lock()
	if c.active == p {
		c.active = nil
	}
	c.mu.Unlock()

	p.cancel()
	p.once.Do(func() { p.done(err) })
}

// Verify Cloud implements Engine at compile time.
var _ Engine = (*Cloud)(nil)
