package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/go-synth/internal/httpc"
)

const providerGemini = "gemini"

// Gemini answers messages with the Gemini generateContent REST endpoint.
type Gemini struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini REST responder. A missing API key is reported
// by Respond so the transcript can show it.
func NewGemini(opts ...Option) *Gemini {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Gemini{
		config: cfg,
		http:   httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "chat.gemini"),
	}
}

// Respond sends the persona prompt plus message and returns the reply text.
func (g *Gemini) Respond(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	if err := g.config.Validate(); err != nil {
		return "", err
	}
	start := time.Now()

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: g.config.Prompt(message)}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", WrapError(providerGemini, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.config.BaseURL, "/"), g.config.Model, url.QueryEscape(g.config.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", WrapError(providerGemini, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", WrapError(providerGemini, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", g.parseError(resp)
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", WrapError(providerGemini, fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}

	text, ok := result.text()
	if !ok {
		return "", WrapError(providerGemini, ErrInvalidResponse)
	}

	g.logger.Debug("reply received",
		"model", g.config.Model,
		"chars", len(text),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// Close releases idle connections.
func (g *Gemini) Close() error {
	g.http.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (g *Gemini) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Provider: providerGemini}
	if err := json.Unmarshal(body, &errResp); err != nil {
		g.logger.Warn("unreadable error body", "status", resp.StatusCode, "error", err)
	} else {
		apiErr.Message = errResp.Error.Message
		apiErr.Status = errResp.Error.Status
	}
	g.logger.Error("gemini request failed",
		"status", resp.StatusCode,
		"api_status", apiErr.Status,
		"message", apiErr.Message,
	)
	return apiErr
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *geminiResponse) text() (string, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := r.Candidates[0].Content.Parts[0].Text
	return text, text != ""
}

// Verify Gemini implements Responder at compile time.
var _ Responder = (*Gemini)(nil)
