// Package viewer owns the showcase state the page renders.
//
// A Viewer ties the camera rig, the scene, the dev-mode editor, the chat
// session and the speech sequencer together behind one lock. The frame loop,
// HTTP handlers and websocket callbacks all enter through it, so frame
// updates never overlap with edits. Poses and state snapshots go out through a
// Publisher, normally the broadcast hub.
package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-synth/pkg/chat"
	"github.com/teslashibe/go-synth/pkg/clipboard"
	"github.com/teslashibe/go-synth/pkg/editor"
	"github.com/teslashibe/go-synth/pkg/memory"
	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/rig"
	"github.com/teslashibe/go-synth/pkg/scene"
	"github.com/teslashibe/go-synth/pkg/speech"
)

// Publisher delivers messages to subscribed pages.
type Publisher interface {
	BroadcastMessage(msg *protocol.Message) error
}

// Deps are the collaborators a Viewer drives. Any of them may be nil; the
// matching features then report an error or do nothing.
type Deps struct {
	Session   *chat.Session
	Speech    *speech.Sequencer
	Clipboard clipboard.Writer
	Publisher Publisher
	Memory    *memory.Memory
}

// Subtitle is the robot's last reply as shown under the model.
type Subtitle struct {
	Message  string `json:"message"`
	Speaking bool   `json:"speaking"`
	Error    string `json:"error,omitempty"`
}

// State is the snapshot served to the page.
type State struct {
	Mode string `json:"mode"`
	scene.Scene
	Selection  *editor.Selection `json:"selection,omitempty"`
	Subtitle   Subtitle          `json:"subtitle"`
	SaveNotice bool              `json:"saveNotice"`
	Bookmarked bool              `json:"bookmarked"`
	ClipTime   float64           `json:"clipTime"`
	Frames     uint64            `json:"frames"`
}

// Stats reports frame loop counters.
type Stats struct {
	Frames        uint64 `json:"frames"`
	Skipped       uint64 `json:"skipped"`
	PublishErrors uint64 `json:"publish_errors"`
	Speeches      int    `json:"speeches"`
}

// Viewer coordinates the showcase state.
type Viewer struct {
	cfg     *Config
	logger  *slog.Logger
	session *chat.Session
	seq     *speech.Sequencer
	clip    clipboard.Writer
	out     Publisher
	mem     *memory.Memory
	now     func() time.Time

	speeches sync.WaitGroup

	mu          sync.Mutex
	ctrl        *rig.Controller
	scene       scene.Scene
	bookmark    scene.Bookmark
	editor      editor.Editor
	loop        *scene.ClipLoop
	subtitle    Subtitle
	speakingID  string
	noticeUntil time.Time
	noticeShown bool
	running     bool
	closed      bool

	// Frame loop diagnostics
	lastPose      scene.Pose
	lastClip      time.Duration
	frames        uint64
	skipped       uint64
	publishErrors uint64
	inFlight      int
}

// New creates a viewer in presentation mode with the camera on the fixed pose,
// or in dev mode on the dev camera when WithDevMode is set.
func New(deps Deps, opts ...Option) *Viewer {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	p := cfg.Presets
	rigCfg := cfg.Rig
	rigCfg.FixedPose = p.Camera
	rigCfg.MaxSpeed = p.MoveSpeed

	v := &Viewer{
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "viewer"),
		session: deps.Session,
		seq:     deps.Speech,
		clip:    deps.Clipboard,
		out:     deps.Publisher,
		mem:     deps.Memory,
		now:     time.Now,
		ctrl:    rig.NewController(p.Camera, rig.WithConfig(rigCfg)),
		scene:   scene.New(p),
		loop:    scene.NewClipLoop(cfg.ClipDuration),
	}

	start, restored := p.DevCamera, false
	if v.mem != nil {
		if pose, ok := v.mem.SavedCamera(); ok {
			v.bookmark.Save(pose)
		}
		if layout, ok := v.mem.SavedLayout(); ok && cfg.RestoreLayout {
			layout.Apply(&v.scene)
			start, restored = layout.Camera, true
		}
	}
	if cfg.StartDev {
		v.ctrl.SetMode(rig.ModeDev)
		v.teleportLocked(start)
	}
	if restored {
		v.logger.Info("restored remembered layout")
	}

	if v.session != nil {
		v.session.OnResponse(v.handleReply)
	}
	if v.seq != nil {
		v.seq.OnStart(v.handleSpeechStart)
		v.seq.OnDone(v.handleSpeechDone)
	}
	return v
}

// Run drives the frame loop until ctx is done.
func (v *Viewer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(v.cfg.FrameRate))
	defer ticker.Stop()

	v.mu.Lock()
	v.running = true
	v.mu.Unlock()
	v.logger.Info("frame loop started", "fps", v.cfg.FrameRate)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			v.mu.Lock()
			v.running = false
			v.mu.Unlock()
			v.logger.Info("frame loop stopped", "frames", v.Stats().Frames)
			return
		case now := <-ticker.C:
			v.Step(now.Sub(last))
			last = now
		}
	}
}

// IsRunning reports whether the frame loop is active.
func (v *Viewer) IsRunning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// Step advances one frame of dt and publishes the pose when it changed.
func (v *Viewer) Step(dt time.Duration) scene.Pose {
	v.mu.Lock()
	pose := v.ctrl.Update(dt)
	mode := v.ctrl.Mode()
	if mode == rig.ModeDev {
		v.scene.Camera = pose
	}
	clip := v.loop.Advance(dt)
	v.frames++

	send := pose != v.lastPose || clip != v.lastClip || v.frames%v.cfg.KeyframeEvery == 0
	if send {
		v.lastPose = pose
		v.lastClip = clip
	} else {
		v.skipped++
	}

	expired := v.noticeShown && !v.now().Before(v.noticeUntil)
	if expired {
		v.noticeShown = false
	}
	v.mu.Unlock()

	if send {
		v.publishPose(pose, mode, clip)
	}
	if expired {
		v.publishState()
	}
	return pose
}

// Mode returns the current camera mode.
func (v *Viewer) Mode() rig.Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctrl.Mode()
}

// ToggleDevMode flips between presentation and dev mode and returns the new mode.
// Entering dev mode resumes from the last dev camera pose; leaving it drops
// held input and the editor selection.
func (v *Viewer) ToggleDevMode() rig.Mode {
	v.mu.Lock()
	var mode rig.Mode
	if v.ctrl.Mode() == rig.ModeDev {
		mode = rig.ModePresentation
		v.ctrl.SetMode(mode)
		v.editor.Clear()
	} else {
		mode = rig.ModeDev
		v.ctrl.SetMode(mode)
		v.ctrl.Teleport(v.scene.Camera)
	}
	v.mu.Unlock()

	v.logger.Info("mode changed", "mode", mode.String())
	v.publishState()
	return mode
}

// State returns a snapshot of everything the page renders.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *Viewer) stateLocked() State {
	st := State{
		Mode:       v.ctrl.Mode().String(),
		Scene:      v.scene,
		Subtitle:   v.subtitle,
		SaveNotice: v.noticeShown && v.now().Before(v.noticeUntil),
		ClipTime:   v.loop.Time().Seconds(),
		Frames:     v.frames,
	}
	st.Camera = v.ctrl.Pose()
	_, st.Bookmarked = v.bookmark.Saved()
	if sel, ok := v.editor.Snapshot(v.scene); ok {
		st.Selection = &sel
	}
	return st
}

// Stats returns frame loop counters.
func (v *Viewer) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Stats{
		Frames:        v.frames,
		Skipped:       v.skipped,
		PublishErrors: v.publishErrors,
		Speeches:      v.inFlight,
	}
}

// Close stops speech for good and waits for in-flight utterances to resolve.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	if v.seq != nil {
		v.seq.Dispose()
	}
	v.speeches.Wait()
}

func (v *Viewer) publishPose(pose scene.Pose, mode rig.Mode, clip time.Duration) {
	if v.out == nil {
		return
	}
	msg, err := protocol.NewPoseMessage(pose.Position, pose.Rotation, mode.String(), clip.Seconds())
	if err != nil {
		v.logger.Error("encode pose", "error", err)
		return
	}
	v.publish(msg)
}

// PublishState broadcasts the current state snapshot.
func (v *Viewer) PublishState() {
	v.publishState()
}

func (v *Viewer) publishState() {
	if v.out == nil {
		return
	}
	msg, err := protocol.NewMessage(protocol.TypeState, v.State())
	if err != nil {
		v.logger.Error("encode state", "error", err)
		return
	}
	v.publish(msg)
}

func (v *Viewer) publish(msg *protocol.Message) {
	if err := v.out.BroadcastMessage(msg); err != nil {
		v.mu.Lock()
		v.publishErrors++
		n := v.publishErrors
		v.mu.Unlock()
		if n%100 == 1 {
			v.logger.Warn("publish failed", "type", msg.Type, "error", err, "count", n)
		}
	}
}
