package speech

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrDisposed is returned by Speak after the sequencer was disposed.
	ErrDisposed = errors.New("speech: sequencer disposed")

	// ErrNoEngine is returned when a sequencer is built without an engine.
	ErrNoEngine = errors.New("speech: engine required")

	// ErrInterrupted matches engine errors caused by a cancel.
	ErrInterrupted = errors.New("speech: interrupted")

	// ErrNotConnected is returned by engines that have nowhere to play audio.
	ErrNotConnected = errors.New("speech: no page connected")
)

// Engine error codes reported by speech engines.
const (
	CodeInterrupted = "interrupted"
	CodeCanceled    = "canceled"
	CodeFailed      = "synthesis-failed"
)

// EngineError is an error reported by a speech engine for one utterance.
type EngineError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("speech engine: %s: %s", e.Code, e.Message)
	}
	return "speech engine: " + e.Code
}

// Is reports interrupted and canceled codes as ErrInterrupted.
func (e *EngineError) Is(target error) bool {
	return target == ErrInterrupted && e.IsInterrupted()
}

// IsInterrupted returns true if the utterance was cut short by a cancel.
func (e *EngineError) IsInterrupted() bool {
	return e.Code == CodeInterrupted || e.Code == CodeCanceled
}

func interrupted() error {
	return &EngineError{Code: CodeInterrupted}
}
