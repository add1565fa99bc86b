package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiRequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Olá, visitante."}]}}]}`)
	}))
	defer srv.Close()

	g := NewGemini(WithAPIKey("k-123"), WithBaseURL(srv.URL), WithPersona("P: "))
	reply, err := g.Respond(context.Background(), "quem é você?")
	require.NoError(t, err)
	assert.Equal(t, "Olá, visitante.", reply)

	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "k-123", gotKey)
	want := map[string]any{
		"contents": []any{
			map[string]any{"parts": []any{map[string]any{"text": "P: quem é você?"}}},
		},
	}
	assert.Equal(t, want, gotBody)
}

func TestGeminiEmptyMessageMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := geminiServer(t, 200, `{}`, &calls)
	g := NewGemini(WithAPIKey("k"), WithBaseURL(srv.URL))

	for _, msg := range []string{"", "   ", "\t\n"} {
		_, err := g.Respond(context.Background(), msg)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Zero(t, calls.Load())
}

func TestGeminiMissingKey(t *testing.T) {
	var calls atomic.Int32
	srv := geminiServer(t, 200, `{}`, &calls)
	g := NewGemini(WithBaseURL(srv.URL))

	_, err := g.Respond(context.Background(), "oi")
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.Zero(t, calls.Load())
}

func TestGeminiErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"unauthorized", 401, `{"error":{"message":"bad key"}}`, "API key is invalid or expired"},
		{"rate limited", 429, `{"error":{"message":"quota"}}`, "Request limit exceeded. Try again in a few minutes"},
		{"not found", 404, `{"error":{"message":"no model"}}`, "Model not found. Check the API configuration"},
		{"server error with message", 500, `{"error":{"message":"internal","status":"INTERNAL"}}`, "HTTP error: 500 - internal"},
		{"server error without body", 503, `not json`, "HTTP error: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := geminiServer(t, tt.status, tt.body, nil)
			g := NewGemini(WithAPIKey("k"), WithBaseURL(srv.URL))

			_, err := g.Respond(context.Background(), "oi")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, Describe(err))
		})
	}
}

func TestGeminiMalformedResponse(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
		`{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
		`garbage`,
	} {
		srv := geminiServer(t, 200, body, nil)
		g := NewGemini(WithAPIKey("k"), WithBaseURL(srv.URL))

		_, err := g.Respond(context.Background(), "oi")
		assert.ErrorIs(t, err, ErrInvalidResponse, body)
		assert.Equal(t, "Invalid response from Gemini service", Describe(err))
	}
}

func TestChainFallback(t *testing.T) {
	failing := WithError(&APIError{StatusCode: 500})
	working := NewMock("from fallback")

	chain, err := NewChain(nil, failing, working)
	require.NoError(t, err)

	reply, err := chain.Respond(context.Background(), "oi")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", reply)
	assert.Equal(t, 1, failing.Calls())
}

func TestChainAllFail(t *testing.T) {
	chain, _ := NewChain(nil,
		WithError(errors.New("first")),
		WithError(&APIError{StatusCode: 429}),
	)

	_, err := chain.Respond(context.Background(), "oi")
	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Len(t, chainErr.Errors, 2)
	assert.Equal(t, "Request limit exceeded. Try again in a few minutes", Describe(err))
}

func TestNewChainRequiresResponder(t *testing.T) {
	_, err := NewChain(nil)
	assert.ErrorIs(t, err, ErrNoResponder)
}

func TestNewSelectsBackend(t *testing.T) {
	r, err := New(context.Background(), WithAPIKey("k"))
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, r)

	_, err = New(context.Background(), WithConfig(Config{Backend: "carrier-pigeon"}))
	assert.ErrorContains(t, err, "unknown backend")

	_, err = New(context.Background(), WithConfig(Config{Backend: BackendSDK}))
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
