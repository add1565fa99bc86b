package scene

import "time"

// Robot clip timing. The idle turn starts at frame 220 of a 30 fps clip.
const (
	ClipStartFrame = 220
	ClipFPS        = 30
)

// ClipLoop tracks the playhead of the model's animation clip.
// The clip plays once from the start frame and is rewound to it when it
// reaches the end. A zero-duration clip means the model shipped without
// animations; Advance is then a no-op.
type ClipLoop struct {
	Duration time.Duration
	Start    time.Duration

	time    time.Duration
	started bool
}

// NewClipLoop returns a loop for a clip of the given length.
func NewClipLoop(duration time.Duration) *ClipLoop {
	return &ClipLoop{
		Duration: duration,
		Start:    time.Duration(ClipStartFrame) * time.Second / ClipFPS,
	}
}

// Advance moves the playhead by dt and returns the new time.
func (l *ClipLoop) Advance(dt time.Duration) time.Duration {
	if l == nil || l.Duration <= 0 {
		return 0
	}
	if !l.started {
		l.time = l.Start
		l.started = true
		return l.time
	}
	l.time += dt
	if l.time >= l.Duration {
		l.time = l.Start
	}
	return l.time
}

// Time returns the current playhead.
func (l *ClipLoop) Time() time.Duration {
	if l == nil {
		return 0
	}
	return l.time
}
