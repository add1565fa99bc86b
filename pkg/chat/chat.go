// Package chat answers visitor messages as the showcase robot.
//
// A Responder turns one user message into one reply. Gemini talks to the
// Gemini REST API directly, GenAI goes through the google.golang.org/genai
// SDK, and Chain falls back from one to the next. Session keeps the
// transcript shown next to the robot.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Responder produces the robot's reply to a message.
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

// New builds the responder selected by cfg.Backend.
func New(ctx context.Context, opts ...Option) (Responder, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	switch strings.ToLower(cfg.Backend) {
	case "", BackendREST:
		return NewGemini(opts...), nil
	case BackendSDK:
		return NewGenAI(ctx, opts...)
	case BackendChain:
		sdk, err := NewGenAI(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return NewChain(cfg.Logger, NewGemini(opts...), sdk)
	default:
		return nil, fmt.Errorf("chat: unknown backend %q", cfg.Backend)
	}
}

// Chain tries responders in order until one succeeds.
type Chain struct {
	responders []Responder
	logger     *slog.Logger
}

// NewChain creates a responder chain. At least one responder is required.
func NewChain(logger *slog.Logger, responders ...Responder) (*Chain, error) {
	if len(responders) == 0 {
		return nil, ErrNoResponder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		responders: responders,
		logger:     logger.With("component", "chat.chain"),
	}, nil
}

// Respond tries each responder until one succeeds.
func (c *Chain) Respond(ctx context.Context, message string) (string, error) {
	var errs []error

	for i, r := range c.responders {
		reply, err := r.Respond(ctx, message)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback responder succeeded", "responder_index", i)
			}
			return reply, nil
		}

		errs = append(errs, err)
		c.logger.Warn("responder failed, trying next",
			"responder_index", i,
			"error", err,
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &ChainError{Errors: errs}
}

// Verify Chain implements Responder at compile time.
var _ Responder = (*Chain)(nil)
