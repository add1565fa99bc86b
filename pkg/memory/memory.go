// Package memory persists dev-mode work across restarts.
//
// It remembers the bookmarked camera pose and the last layout collected to
// the clipboard, so a restarted showcase can pick up where a session left off.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-synth/pkg/scene"
)

// Memory is the persisted dev-mode state.
// All data persists to the configured Store backend.
type Memory struct {
	// Camera is the bookmarked pose, if any.
	Camera *scene.Pose `json:"camera,omitempty"`

	// Layout is the last collected parameter set, if any.
	Layout *scene.Params `json:"layout,omitempty"`

	// UpdatedAt is when anything was last remembered.
	UpdatedAt time.Time `json:"updated_at"`

	store Store
	mu    sync.RWMutex
}

// New creates a memory without persistence.
func New() *Memory {
	return &Memory{}
}

// NewWithStore creates a memory backed by store and loads what it holds.
func NewWithStore(store Store) (*Memory, error) {
	m := &Memory{store: store}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewWithFile creates a memory that persists to a JSON file.
func NewWithFile(path string) (*Memory, error) {
	return NewWithStore(NewJSONStore(path))
}

// RememberCamera stores the bookmarked pose and persists it.
func (m *Memory) RememberCamera(p scene.Pose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Camera = &p
	m.UpdatedAt = time.Now()
	return m.saveLocked()
}

// RememberLayout stores a collected parameter set and persists it.
func (m *Memory) RememberLayout(p scene.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Layout = &p
	m.UpdatedAt = time.Now()
	return m.saveLocked()
}

// SavedCamera returns the bookmarked pose.
func (m *Memory) SavedCamera() (scene.Pose, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Camera == nil {
		return scene.Pose{}, false
	}
	return *m.Camera, true
}

// SavedLayout returns the last collected layout.
func (m *Memory) SavedLayout() (scene.Params, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Layout == nil {
		return scene.Params{}, false
	}
	return *m.Layout, true
}

// Save persists memory to the configured store.
func (m *Memory) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Memory) saveLocked() error {
	if m.store == nil {
		return nil
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: encode: %w", err)
	}
	return m.store.Save(data)
}

// Load reads memory from the configured store.
func (m *Memory) Load() error {
	if m.store == nil {
		return nil
	}

	data, err := m.store.Load()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	var loaded struct {
		Camera    *scene.Pose   `json:"camera"`
		Layout    *scene.Params `json:"layout"`
		UpdatedAt time.Time     `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("memory: decode: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Camera = loaded.Camera
	m.Layout = loaded.Layout
	m.UpdatedAt = loaded.UpdatedAt
	return nil
}

// Close releases resources held by the store.
func (m *Memory) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Clear forgets everything and persists the empty state.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Camera = nil
	m.Layout = nil
	m.UpdatedAt = time.Now()
	return m.saveLocked()
}
