package protocol

import (
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
	}{
		{"pose message", TypePose, PoseData{Position: [3]float64{0, 1.4, 5}, Mode: "dev"}},
		{"speak message", TypeSpeak, SpeakData{ID: "a", Text: "olá", Lang: "pt-BR", Rate: 1}},
		{"nil data", TypePing, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if err != nil {
				t.Fatalf("NewMessage() error = %v", err)
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
			if tt.data == nil && msg.Data != nil {
				t.Error("nil data should not be encoded")
			}
		})
	}
}

func TestNewMessageUnsupportedData(t *testing.T) {
	if _, err := NewMessage(TypeState, make(chan int)); err == nil {
		t.Error("expected marshal error for channel data")
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"key","ts":1,"data":{"key":"w","down":true}}`))
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	key, err := msg.GetKeyData()
	if err != nil {
		t.Fatalf("GetKeyData() error = %v", err)
	}
	if key.Key != "w" || !key.Down || key.Ctrl {
		t.Errorf("unexpected key data %+v", key)
	}
}

func TestParseMessageErrors(t *testing.T) {
	for _, input := range []string{`not json`, `{}`, `{"type":""}`} {
		if _, err := ParseMessage([]byte(input)); err == nil {
			t.Errorf("ParseMessage(%q) should fail", input)
		}
	}

	msg := &Message{Type: TypeMouse, Data: []byte(`{"action":1}`)}
	if _, err := msg.GetMouseData(); err == nil {
		t.Error("GetMouseData() should fail on a mistyped action")
	}
}

func TestAudioMessage(t *testing.T) {
	msg, err := NewAudioMessage("u1", "audio/mpeg", []byte("ID3 bytes"))
	if err != nil {
		t.Fatalf("NewAudioMessage() error = %v", err)
	}
	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	audio, err := parsed.GetAudioData()
	if err != nil {
		t.Fatalf("GetAudioData() error = %v", err)
	}
	decoded, err := audio.DecodeAudio()
	if err != nil {
		t.Fatalf("DecodeAudio() error = %v", err)
	}
	if string(decoded) != "ID3 bytes" || audio.ID != "u1" || audio.MIME != "audio/mpeg" {
		t.Errorf("unexpected audio %+v", audio)
	}
}

func TestPongLatency(t *testing.T) {
	msg, _ := NewPongMessage(1000, 1042)
	var pong PongData
	if err := msg.ParseData(&pong); err != nil {
		t.Fatal(err)
	}
	if pong.LatencyMs != 42 {
		t.Errorf("LatencyMs = %d, want 42", pong.LatencyMs)
	}

	msg, _ = NewPongMessage(0, 1042)
	msg.ParseData(&pong)
	if pong.LatencyMs != 0 {
		t.Errorf("LatencyMs without ping ts = %d, want 0", pong.LatencyMs)
	}
}
