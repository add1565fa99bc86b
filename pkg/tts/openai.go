package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teslashibe/go-synth/internal/httpc"
)

const (
	openAISpeechURL = "https://api.openai.com/v1/audio/speech"
	providerOpenAI  = "openai"

	// maxRetryAfter caps how long a Retry-After header may stall an utterance.
	maxRetryAfter = 5 * time.Second
)

// Voices the showcase offers. nova carries Portuguese best; onyx is the
// robot's default.
const (
	VoiceNova = "nova"
	VoiceOnyx = "onyx"
)

// Models
const (
	ModelTTS1   = "tts-1"
	ModelTTS1HD = "tts-1-hd"
)

// speechRequest is the body of POST /v1/audio/speech.
type speechRequest struct {
	Model  string  `json:"model"`
	Voice  string  `json:"voice"`
	Input  string  `json:"input"`
	Format string  `json:"response_format"`
	Speed  float64 `json:"speed,omitempty"`
}

// OpenAI synthesizes speech with the OpenAI audio API.
type OpenAI struct {
	config *Config
	client *http.Client
	logger *slog.Logger
	url    string
}

// NewOpenAI creates an OpenAI provider. An API key is required.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, WrapError(providerOpenAI, err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	url := cfg.BaseURL
	if url == "" {
		url = openAISpeechURL
	}
	return &OpenAI{
		config: cfg,
		client: httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "tts.openai"),
		url:    url,
	}, nil
}

// Synthesize turns text into audio in the configured format.
func (o *OpenAI) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerOpenAI, ErrEmptyText)
	}

	body, err := json.Marshal(speechRequest{
		Model:  o.config.ModelID,
		Voice:  o.config.VoiceID,
		Input:  text,
		Format: string(o.config.OutputFormat),
		Speed:  o.config.Speed,
	})
	if err != nil {
		return nil, WrapError(providerOpenAI, fmt.Errorf("encode request: %w", err))
	}

	start := time.Now()
	audio, err := o.post(ctx, body)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	duration := EstimateDuration(text)
	if o.config.Speed > 0 {
		duration = time.Duration(float64(duration) / o.config.Speed)
	}
	o.logger.Debug("synthesized",
		"chars", len(text),
		"bytes", len(audio),
		"latency", latency,
		"voice", o.config.VoiceID,
	)

	return &AudioResult{
		Audio:     audio,
		Format:    AudioFormat{Encoding: o.config.OutputFormat, SampleRate: 24000, Channels: 1},
		Duration:  duration,
		CharCount: len(text),
		LatencyMs: latency.Milliseconds(),
	}, nil
}

// Voice returns the configured voice.
func (o *OpenAI) Voice() string {
	return o.config.VoiceID
}

// Close drops idle connections.
func (o *OpenAI) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

// post sends body and returns the audio. Rate limits and server errors are
// retried up to MaxRetries times with a linear backoff, or the server's
// Retry-After when it sends one.
func (o *OpenAI) post(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error
	var wait time.Duration

	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		wait = o.config.RetryDelay * time.Duration(attempt+1)

		audio, retryAfter, err := o.once(ctx, body)
		if err == nil {
			return audio, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		apiErr, ok := err.(*APIError)
		if ok && !apiErr.IsRetryable() {
			return nil, apiErr
		}
		if retryAfter > 0 {
			wait = min(retryAfter, maxRetryAfter)
		}
		lastErr = err
		o.logger.Warn("synthesis failed, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

// once performs a single request. Failed responses come back as *APIError
// along with any Retry-After the server asked for.
func (o *OpenAI) once(ctx context.Context, body []byte) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, WrapError(providerOpenAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, 0, WrapError(providerOpenAI, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, WrapError(providerOpenAI, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode == http.StatusOK {
		return data, 0, nil
	}

	var retryAfter time.Duration
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		retryAfter = time.Duration(secs) * time.Second
	}
	return nil, retryAfter, decodeAPIError(resp.StatusCode, data)
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: string(body), Provider: providerOpenAI}

	var payload struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		apiErr.Message = payload.Error.Message
		apiErr.Code = payload.Error.Code
	}
	return apiErr
}

var _ Provider = (*OpenAI)(nil)
