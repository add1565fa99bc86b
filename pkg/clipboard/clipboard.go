// Package clipboard copies scene parameters to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: not supported on this system")

// Writer stores text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

// WriteText implements Writer.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: write: %w", err)
	}
	return nil
}

// ReadText returns the clipboard contents.
func (System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("clipboard: read: %w", err)
	}
	return text, nil
}

// Memory is an in-process clipboard for tests and headless servers.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
}

// WriteText implements Writer.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text = text
	m.writes++
	m.mu.Unlock()
	return nil
}

// Text returns the last text written.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many times WriteText was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Verify implementations at compile time.
var (
	_ Writer = System{}
	_ Writer = (*Memory)(nil)
)
