package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who wrote a transcript message.
type Role string

const (
	RoleUser   Role = "user"
	RoleRobot  Role = "robot"
	RoleSystem Role = "system"
)

// ApologyMessage is added to the transcript when a reply fails.
const ApologyMessage = "Sorry, an error occurred while processing your message. Please try again."

// Message is one entry of the transcript.
type Message struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Snapshot is the session state served to the page.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Loading  bool      `json:"loading"`
	Error    string    `json:"error,omitempty"`
}

// Session keeps the chat transcript and forwards replies.
type Session struct {
	responder Responder
	logger    *slog.Logger

	mu         sync.Mutex
	messages   []Message
	loading    bool
	err        string
	onResponse func(string)
}

// NewSession creates a session answered by responder.
func NewSession(responder Responder, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		responder: responder,
		logger:    logger.With("component", "chat.session"),
	}
}

// OnResponse registers a callback invoked with every successful reply.
func (s *Session) OnResponse(fn func(string)) {
	s.mu.Lock()
	s.onResponse = fn
	s.mu.Unlock()
}

// Submit sends message and blocks until the reply arrives.
//
// Blank input returns ErrEmptyMessage and a submit while another is in
// flight returns ErrBusy; neither touches the transcript or the responder.
// Responder failures are recorded in the transcript and returned.
func (s *Session) Submit(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.loading = true
	s.err = ""
	s.appendLocked(RoleUser, message)
	s.mu.Unlock()

	reply, err := s.responder.Respond(ctx, message)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyResponse
	}

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = "Error processing message: " + Describe(err)
		s.appendLocked(RoleSystem, ApologyMessage)
		s.mu.Unlock()
		s.logger.Error("chat reply failed", "error", err)
		return "", err
	}
	s.appendLocked(RoleRobot, reply)
	onResponse := s.onResponse
	s.mu.Unlock()

	if onResponse != nil {
		onResponse(reply)
	}
	return reply, nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Messages: append([]Message(nil), s.messages...),
		Loading:  s.loading,
		Error:    s.err,
	}
}

// Tail returns the last n messages.
func (s *Session) Tail(n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.messages) {
		n = len(s.messages)
	}
	return append([]Message(nil), s.messages[len(s.messages)-n:]...)
}

func (s *Session) appendLocked(role Role, text string) {
	s.messages = append(s.messages, Message{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
		At:   time.Now(),
	})
}
