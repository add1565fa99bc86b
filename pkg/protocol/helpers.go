package protocol

import (
	"encoding/base64"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewSpeakMessage creates a speak message
func NewSpeakMessage(data SpeakData) (*Message, error) {
	return NewMessage(TypeSpeak, data)
}

// NewAudioMessage creates an audio message from raw encoded audio
func NewAudioMessage(id, mime string, audio []byte) (*Message, error) {
	return NewMessage(TypeAudio, AudioData{
		ID:   id,
		MIME: mime,
		Data: base64.StdEncoding.EncodeToString(audio),
	})
}

// NewPoseMessage creates a pose message
func NewPoseMessage(position, rotation [3]float64, mode string, clipTime float64) (*Message, error) {
	return NewMessage(TypePose, PoseData{
		Position: position,
		Rotation: rotation,
		Mode:     mode,
		ClipTime: clipTime,
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(pingTS, pongTS int64) (*Message, error) {
	latency := int64(0)
	if pingTS > 0 {
		latency = pongTS - pingTS
	}
	return NewMessage(TypePong, PongData{
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: latency,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetVoicesData extracts voice data from a message
func (m *Message) GetVoicesData() (*VoicesData, error) {
	var data VoicesData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSpeechEventData extracts speech event data from a message
func (m *Message) GetSpeechEventData() (*SpeechEventData, error) {
	var data SpeechEventData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetKeyData extracts keyboard data from a message
func (m *Message) GetKeyData() (*KeyData, error) {
	var data KeyData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMouseData extracts mouse data from a message
func (m *Message) GetMouseData() (*MouseData, error) {
	var data MouseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSpeakData extracts speak data from a message
func (m *Message) GetSpeakData() (*SpeakData, error) {
	var data SpeakData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetAudioData extracts audio data from a message
func (m *Message) GetAudioData() (*AudioData, error) {
	var data AudioData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodeAudio decodes the base64 audio data
func (a *AudioData) DecodeAudio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.Data)
}

// GetPoseData extracts pose data from a message
func (m *Message) GetPoseData() (*PoseData, error) {
	var data PoseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
