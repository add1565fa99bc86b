// Package hub fans encoded frames out to websocket subscribers.
//
// Pose frames are lossy: a subscriber that falls behind skips them and picks
// up the next pose. Any other frame that does not fit a subscriber's queue
// disconnects it, since state and audio cannot be skipped.
package hub

import "github.com/teslashibe/go-synth/pkg/protocol"

// Frame is one encoded payload queued for subscribers.
type Frame struct {
	Data []byte
	// Lossy frames may be skipped for a lagging subscriber.
	Lossy bool
}

// TextFrame wraps pre-encoded JSON.
func TextFrame(data []byte) Frame {
	return Frame{Data: data}
}

// frameFor encodes a protocol message. Poses supersede each other, so they
// travel as lossy frames.
func frameFor(msg *protocol.Message) (Frame, error) {
	data, err := msg.Bytes()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Data: data, Lossy: msg.Type == protocol.TypePose}, nil
}
