package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/teslashibe/go-synth/internal/httpc"
)

const providerGenAI = "genai"

// GenAI answers messages through the google.golang.org/genai SDK.
type GenAI struct {
	client *genai.Client
	config *Config
	logger *slog.Logger
}

// NewGenAI creates an SDK-backed responder.
func NewGenAI(ctx context.Context, opts ...Option) (*GenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, WrapError(providerGenAI, err)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpc.NewClient(cfg.Timeout),
	}
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, WrapError(providerGenAI, fmt.Errorf("create client: %w", err))
	}

	return &GenAI{
		client: client,
		config: cfg,
		logger: cfg.Logger.With("component", "chat.genai"),
	}, nil
}

// Respond sends the persona prompt plus message and returns the reply text.
func (g *GenAI) Respond(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(g.config.Prompt(message)), nil)
	if err != nil {
		return "", g.mapError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", WrapError(providerGenAI, ErrInvalidResponse)
	}
	g.logger.Debug("reply received", "model", g.config.Model, "chars", len(text))
	return text, nil
}

// mapError converts SDK API errors into APIError.
func (g *GenAI) mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return g.apiError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return g.apiError(*apiErrPtr)
	}
	return WrapError(providerGenAI, err)
}

func (g *GenAI) apiError(e genai.APIError) *APIError {
	g.logger.Error("genai request failed", "status", e.Code, "api_status", e.Status, "message", e.Message)
	return &APIError{
		StatusCode: e.Code,
		Message:    e.Message,
		Status:     e.Status,
		Provider:   providerGenAI,
	}
}

// Verify GenAI implements Responder at compile time.
var _ Responder = (*GenAI)(nil)
