package viewer

import (
	"strings"

	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/scene"
)

// HandleKey applies a keyboard event from the page.
//
// In dev mode ctrl+1 saves the camera, 1 restores the saved pose and 2 resets
// to the fixed pose. Other keys feed the camera controller. Everything is
// dropped in presentation mode.
func (v *Viewer) HandleKey(k protocol.KeyData) {
	key := strings.ToLower(k.Key)
	if !k.Down {
		v.mu.Lock()
		v.ctrl.KeyUp(key)
		v.mu.Unlock()
		return
	}

	switch {
	case key == "1" && k.Ctrl:
		_ = v.SaveCamera()
	case key == "1":
		_ = v.RestoreCamera()
	case key == "2" && !k.Ctrl:
		_ = v.ResetCamera()
	default:
		v.mu.Lock()
		v.ctrl.KeyDown(key)
		v.mu.Unlock()
	}
}

// HandleMouse applies a mouse event from the page.
func (v *Viewer) HandleMouse(m protocol.MouseData) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch m.Action {
	case protocol.MouseDown:
		v.ctrl.MouseDown(m.Button, m.X, m.Y)
	case protocol.MouseUp:
		v.ctrl.MouseUp()
	case protocol.MouseMove:
		v.ctrl.MouseMove(m.X, m.Y)
	}
}

// SaveCamera bookmarks the current camera pose and raises the save notice.
func (v *Viewer) SaveCamera() error {
	v.mu.Lock()
	if !v.devLocked() {
		v.mu.Unlock()
		return ErrNotDevMode
	}
	pose := v.ctrl.Pose()
	v.bookmark.Save(pose)
	v.noticeUntil = v.now().Add(v.cfg.SaveNotice)
	v.noticeShown = true
	v.mu.Unlock()

	v.logger.Info("camera saved", "position", pose.Position, "rotation", pose.Rotation)
	if v.mem != nil {
		if err := v.mem.RememberCamera(pose); err != nil {
			v.logger.Warn("persist camera bookmark", "error", err)
		}
	}
	v.publishState()
	return nil
}

// RestoreCamera jumps to the bookmarked pose.
func (v *Viewer) RestoreCamera() error {
	v.mu.Lock()
	if !v.devLocked() {
		v.mu.Unlock()
		return ErrNotDevMode
	}
	pose, ok := v.bookmark.Saved()
	if !ok {
		v.mu.Unlock()
		return ErrNoBookmark
	}
	v.teleportLocked(pose)
	v.mu.Unlock()

	v.logger.Info("camera restored", "position", pose.Position, "rotation", pose.Rotation)
	v.publishState()
	return nil
}

// ResetCamera jumps to the fixed presentation pose.
func (v *Viewer) ResetCamera() error {
	v.mu.Lock()
	if !v.devLocked() {
		v.mu.Unlock()
		return ErrNotDevMode
	}
	pose := v.ctrl.FixedPose()
	v.teleportLocked(pose)
	v.mu.Unlock()

	v.logger.Info("camera reset", "position", pose.Position, "rotation", pose.Rotation)
	v.publishState()
	return nil
}

func (v *Viewer) teleportLocked(p scene.Pose) {
	v.ctrl.Teleport(p)
	v.scene.Camera = v.ctrl.Pose()
}
