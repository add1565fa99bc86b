package viewer

import (
	"fmt"

	"github.com/teslashibe/go-synth/pkg/editor"
	"github.com/teslashibe/go-synth/pkg/rig"
	"github.com/teslashibe/go-synth/pkg/scene"
)

func (v *Viewer) devLocked() bool {
	return v.ctrl.Mode() == rig.ModeDev
}

// Select makes a light or the model the edited asset.
func (v *Viewer) Select(name string) (editor.Selection, error) {
	asset, ok := scene.ParseAsset(name)
	if !ok {
		return editor.Selection{}, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
	}

	v.mu.Lock()
	if !v.devLocked() {
		v.mu.Unlock()
		return editor.Selection{}, ErrNotDevMode
	}
	v.editor.Select(asset)
	sel, _ := v.editor.Snapshot(v.scene)
	v.mu.Unlock()

	v.publishState()
	return sel, nil
}

// Edit applies input box text to a field of the selected asset.
// Unparsable text leaves the scene alone and reports no change.
func (v *Viewer) Edit(field editor.Field, index int, text string) (editor.Selection, bool, error) {
	v.mu.Lock()
	if !v.devLocked() {
		v.mu.Unlock()
		return editor.Selection{}, false, ErrNotDevMode
	}
	changed, err := v.editor.Edit(&v.scene, field, index, text)
	sel, _ := v.editor.Snapshot(v.scene)
	v.mu.Unlock()

	if err != nil {
		return sel, false, err
	}
	if changed {
		v.publishState()
	}
	return sel, changed, nil
}

// EditMoveSpeed applies input box text to the camera speed ceiling.
func (v *Viewer) EditMoveSpeed(text string) (float64, bool, error) {
	v.mu.Lock()
	if !v.devLocked() {
		v.mu.Unlock()
		return 0, false, ErrNotDevMode
	}
	changed := editor.EditMoveSpeed(&v.scene, text)
	if changed {
		v.ctrl.SetMaxSpeed(v.scene.MoveSpeed)
	}
	speed := v.scene.MoveSpeed
	v.mu.Unlock()

	if changed {
		v.publishState()
	}
	return speed, changed, nil
}

// Params collects the camera and both lights.
func (v *Viewer) Params() scene.Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	return scene.Collect(v.scene)
}

// CopyParams writes the collected parameters to the clipboard as indented
// JSON and returns the payload.
func (v *Viewer) CopyParams() ([]byte, error) {
	if v.clip == nil {
		return nil, ErrNoClipboard
	}
	params := v.Params()
	data, err := params.Encode()
	if err != nil {
		return nil, err
	}
	if err := v.clip.WriteText(string(data)); err != nil {
		return nil, fmt.Errorf("viewer: copy params: %w", err)
	}
	v.logger.Info("params copied to clipboard", "bytes", len(data))
	if v.mem != nil {
		if err := v.mem.RememberLayout(params); err != nil {
			v.logger.Warn("persist layout", "error", err)
		}
	}
	return data, nil
}
