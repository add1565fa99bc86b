package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-synth/pkg/chat"
	"github.com/teslashibe/go-synth/pkg/clipboard"
	"github.com/teslashibe/go-synth/pkg/editor"
	"github.com/teslashibe/go-synth/pkg/viewer"
)

// transcriptTail is how many messages POST /api/chat returns.
const transcriptTail = 10

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /api/chat
type ChatResponse struct {
	Reply    string         `json:"reply,omitempty"`
	Error    string         `json:"error,omitempty"`
	Messages []chat.Message `json:"messages"`
}

// TextEdit is the body of PUT /api/move-speed
type TextEdit struct {
	Value string `json:"value"`
}

// FieldEdit is the body of PUT /api/editor/field
type FieldEdit struct {
	Field editor.Field `json:"field"`
	Index int          `json:"index"`
	Value string       `json:"value"`
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"version":     s.cfg.Version,
		"pages":       s.relay.PageCount(),
		"subscribers": s.poses.ClientCount(),
		"uptime":      time.Since(s.started).Round(time.Second).String(),
	})
}

// handleState returns the viewer snapshot
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.viewer.State())
}

// handleToggleDevMode flips presentation/dev mode
func (s *Server) handleToggleDevMode(c *fiber.Ctx) error {
	mode := s.viewer.ToggleDevMode()
	return c.JSON(fiber.Map{"mode": mode.String()})
}

// handleTranscript returns the chat session
func (s *Server) handleTranscript(c *fiber.Ctx) error {
	return c.JSON(s.viewer.Transcript())
}

// handleChat submits a message and waits for the reply.
// Responder failures answer 502 with the user-facing message and the
// transcript, which already carries the apology.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := s.viewer.Chat(c.UserContext(), req.Message)
	switch {
	case err == nil:
		return c.JSON(ChatResponse{Reply: reply, Messages: s.tail()})
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrBusy), errors.Is(err, viewer.ErrNoChat):
		return err
	}

	return c.Status(fiber.StatusBadGateway).JSON(ChatResponse{
		Error:    chat.Describe(err),
		Messages: s.tail(),
	})
}

func (s *Server) tail() []chat.Message {
	msgs := s.viewer.Transcript().Messages
	if len(msgs) > transcriptTail {
		msgs = msgs[len(msgs)-transcriptTail:]
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs
}

// handleStopSpeech silences the robot
func (s *Server) handleStopSpeech(c *fiber.Ctx) error {
	s.viewer.StopSpeech()
	return c.JSON(s.viewer.State().Subtitle)
}

// handleCamera runs a bookmark shortcut
func (s *Server) handleCamera(c *fiber.Ctx) error {
	var err error
	switch c.Params("action") {
	case "save":
		err = s.viewer.SaveCamera()
	case "restore":
		err = s.viewer.RestoreCamera()
	case "reset":
		err = s.viewer.ResetCamera()
	default:
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	st := s.viewer.State()
	return c.JSON(fiber.Map{"camera": st.Camera, "bookmarked": st.Bookmarked})
}

// handleMoveSpeed applies move speed text
func (s *Server) handleMoveSpeed(c *fiber.Ctx) error {
	var req TextEdit
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	speed, changed, err := s.viewer.EditMoveSpeed(req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"moveSpeed": speed, "changed": changed})
}

// handleSelect selects an asset for editing
func (s *Server) handleSelect(c *fiber.Ctx) error {
	sel, err := s.viewer.Select(c.Params("asset"))
	if err != nil {
		return err
	}
	return c.JSON(sel)
}

// handleEditField applies input box text to the selection
func (s *Server) handleEditField(c *fiber.Ctx) error {
	var req FieldEdit
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	sel, changed, err := s.viewer.Edit(req.Field, req.Index, req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"selection": sel, "changed": changed})
}

// handleParams returns the clipboard payload
func (s *Server) handleParams(c *fiber.Ctx) error {
	data, err := s.viewer.Params().Encode()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(data)
}

// handleCopyParams writes the payload to the server's clipboard
func (s *Server) handleCopyParams(c *fiber.Ctx) error {
	data, err := s.viewer.CopyParams()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"copied": true, "bytes": len(data)})
}

// handleError maps errors to status codes and a JSON body
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		msg = fe.Message
	case errors.Is(err, viewer.ErrNotDevMode),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, chat.ErrBusy):
		code = fiber.StatusConflict
	case errors.Is(err, viewer.ErrNoBookmark),
		errors.Is(err, viewer.ErrUnknownAsset):
		code = fiber.StatusNotFound
	case errors.Is(err, editor.ErrUnknownField),
		errors.Is(err, editor.ErrIndex),
		errors.Is(err, chat.ErrEmptyMessage):
		code = fiber.StatusBadRequest
	case errors.Is(err, viewer.ErrNoChat),
		errors.Is(err, viewer.ErrNoClipboard),
		errors.Is(err, clipboard.ErrUnsupported):
		code = fiber.StatusServiceUnavailable
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: msg})
}
