package tts

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent audio lasting Duration.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)

	// Duration is the playback length reported by the default SynthesizeFunc.
	Duration time.Duration

	mu    sync.Mutex
	texts []string
}

// NewMock creates a mock whose audio lasts d.
func NewMock(d time.Duration) *Mock {
	return &Mock{Duration: d}
}

// Synthesize records the call and returns SynthesizeFunc's result.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	fn := m.SynthesizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &AudioResult{
		Audio:     make([]byte, 16),
		Format:    AudioFormat{Encoding: EncodingMP3, SampleRate: 24000, Channels: 1},
		Duration:  m.Duration,
		CharCount: len(text),
	}, nil
}

// Voice returns a fixed voice name.
func (m *Mock) Voice() string {
	return "mock"
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Texts returns every text passed to Synthesize.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
