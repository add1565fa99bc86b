// Package protocol defines the WebSocket messages exchanged between the
// showcase server and the viewer page.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Page → Server messages
	TypeVoices      MessageType = "voices"       // Voices offered by the page's speech engine
	TypeSpeechStart MessageType = "speech_start" // Utterance started playing
	TypeSpeechEnd   MessageType = "speech_end"   // Utterance finished
	TypeSpeechError MessageType = "speech_error" // Utterance failed or was interrupted
	TypeKey         MessageType = "key"          // Keyboard event
	TypeMouse       MessageType = "mouse"        // Mouse event

	// Server → Page messages
	TypeSpeak     MessageType = "speak"      // Speak an utterance
	TypeCancel    MessageType = "cancel"     // Cancel speech
	TypeResume    MessageType = "resume"     // Resume a paused speech engine
	TypeAudio     MessageType = "audio"      // Synthesized audio to play
	TypeAudioStop MessageType = "audio_stop" // Stop audio playback
	TypePose      MessageType = "pose"       // Camera pose for this frame
	TypeState     MessageType = "state"      // Viewer state snapshot

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("protocol: marshal %s data: %w", msgType, err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("protocol: parse %s data: %w", m.Type, err)
	}
	return nil
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protocol: parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("protocol: message without type")
	}
	return &msg, nil
}

// =============================================================================
// Page → Server Message Types
// =============================================================================

// VoiceData describes one synthesis voice
type VoiceData struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// VoicesData lists the voices the page can speak with
type VoicesData struct {
	Voices []VoiceData `json:"voices"`
}

// SpeechEventData reports progress of one utterance
type SpeechEventData struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"` // "interrupted", "canceled", "synthesis-failed", ...
}

// KeyData is a keyboard event
type KeyData struct {
	Key  string `json:"key"`
	Down bool   `json:"down"`
	Ctrl bool   `json:"ctrl,omitempty"`
}

// Mouse actions
const (
	MouseDown = "down"
	MouseUp   = "up"
	MouseMove = "move"
)

// MouseData is a mouse event. Move events carry deltas in DX/DY.
type MouseData struct {
	Action string  `json:"action"`
	Button int     `json:"button"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
}

// =============================================================================
// Server → Page Message Types
// =============================================================================

// SpeakData asks the page to speak text
type SpeakData struct {
	ID     string     `json:"id"`
	Text   string     `json:"text"`
	Lang   string     `json:"lang"`
	Voice  *VoiceData `json:"voice,omitempty"`
	Rate   float64    `json:"rate"`
	Pitch  float64    `json:"pitch"`
	Volume float64    `json:"volume"`
}

// AudioData contains synthesized audio to play
type AudioData struct {
	ID   string `json:"id"`
	MIME string `json:"mime"` // "audio/mpeg"
	Data string `json:"data"` // base64 encoded
}

// PoseData is the camera pose for one frame
type PoseData struct {
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Mode     string     `json:"mode"`
	ClipTime float64    `json:"clipTime,omitempty"` // model animation playhead, seconds
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PongData contains pong response
type PongData struct {
	PingTS    int64 `json:"ping_ts"`
	PongTS    int64 `json:"pong_ts"`
	LatencyMs int64 `json:"latency_ms"`
}
