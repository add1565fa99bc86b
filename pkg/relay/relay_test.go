package relay

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"

	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/speech"
)

func startRelay(t *testing.T, addr string) (*Relay, func()) {
	t.Helper()
	r := New(nil)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.RegisterRoutes(app)

	go app.Listen(addr)
	time.Sleep(100 * time.Millisecond)
	return r, func() { app.Shutdown() }
}

func dialPage(t *testing.T, r *Relay, url string) *gorilla.Conn {
	t.Helper()
	before := r.PageCount()
	ws, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for r.PageCount() == before {
		if time.Now().After(deadline) {
			t.Fatal("page was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return ws
}

func send(t *testing.T, ws *gorilla.Conn, typ protocol.MessageType, data interface{}) {
	t.Helper()
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := msg.Bytes()
	if err := ws.WriteMessage(gorilla.TextMessage, raw); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, ws *gorilla.Conn) *protocol.Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func waitDone(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("done was not called")
		return nil
	}
}

func TestSpeakWithoutPage(t *testing.T) {
	r := New(nil)
	err := r.Speak(speech.Utterance{ID: "x", Text: "oi"}, func(error) {
		t.Error("done must not be called when Speak fails")
	})
	if !errors.Is(err, speech.ErrNotConnected) {
		t.Errorf("Speak() = %v, want ErrNotConnected", err)
	}
}

func TestPageSpeaksUtterance(t *testing.T) {
	r, stop := startRelay(t, ":18092")
	defer stop()

	ws := dialPage(t, r, "ws://localhost:18092/ws/page/kiosk")
	defer ws.Close()

	send(t, ws, protocol.TypeVoices, protocol.VoicesData{Voices: []protocol.VoiceData{
		{Name: "Google português do Brasil", Lang: "pt-BR"},
	}})
	deadline := time.Now().Add(time.Second)
	for len(r.Voices()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if v := r.Voices(); len(v) != 1 || v[0].Lang != "pt-BR" {
		t.Fatalf("Voices() = %v", v)
	}

	done := make(chan error, 1)
	u := speech.Utterance{ID: "u1", Text: "Olá!", Lang: "pt-BR", Rate: 1, Pitch: 1, Volume: 1,
		Voice: &speech.Voice{Name: "Google português do Brasil", Lang: "pt-BR"}}
	if err := r.Speak(u, func(err error) { done <- err }); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	msg := read(t, ws)
	if msg.Type != protocol.TypeSpeak {
		t.Fatalf("Type = %s, want speak", msg.Type)
	}
	sd, _ := msg.GetSpeakData()
	if sd.ID != "u1" || sd.Text != "Olá!" || sd.Voice == nil {
		t.Errorf("unexpected speak data %+v", sd)
	}

	// A stale report for another id is ignored.
	send(t, ws, protocol.TypeSpeechEnd, protocol.SpeechEventData{ID: "old"})
	send(t, ws, protocol.TypeSpeechEnd, protocol.SpeechEventData{ID: "u1"})
	if err := waitDone(t, done); err != nil {
		t.Errorf("done(%v), want nil", err)
	}
}

func TestPageSpeechError(t *testing.T) {
	r, stop := startRelay(t, ":18093")
	defer stop()

	ws := dialPage(t, r, "ws://localhost:18093/ws/page")
	defer ws.Close()

	done := make(chan error, 1)
	r.Speak(speech.Utterance{ID: "u2", Text: "x"}, func(err error) { done <- err })
	read(t, ws)

	send(t, ws, protocol.TypeSpeechError, protocol.SpeechEventData{ID: "u2", Error: "canceled"})
	err := waitDone(t, done)
	if !errors.Is(err, speech.ErrInterrupted) {
		t.Errorf("done(%v), want an interruption", err)
	}
}

func TestCancelInterrupts(t *testing.T) {
	r, stop := startRelay(t, ":18094")
	defer stop()

	ws := dialPage(t, r, "ws://localhost:18094/ws/page")
	defer ws.Close()

	done := make(chan error, 1)
	r.Speak(speech.Utterance{ID: "u3", Text: "longo"}, func(err error) { done <- err })
	read(t, ws)

	r.Cancel()
	if err := waitDone(t, done); !errors.Is(err, speech.ErrInterrupted) {
		t.Errorf("done(%v), want interrupted", err)
	}
	if msg := read(t, ws); msg.Type != protocol.TypeCancel {
		t.Errorf("Type = %s, want cancel", msg.Type)
	}

	r.Resume()
	if msg := read(t, ws); msg.Type != protocol.TypeResume {
		t.Errorf("Type = %s, want resume", msg.Type)
	}
}

func TestDisconnectFailsActiveUtterance(t *testing.T) {
	r, stop := startRelay(t, ":18095")
	defer stop()

	ws := dialPage(t, r, "ws://localhost:18095/ws/page")

	done := make(chan error, 1)
	r.Speak(speech.Utterance{ID: "u4", Text: "x"}, func(err error) { done <- err })
	read(t, ws)
	ws.Close()

	err := waitDone(t, done)
	var engErr *speech.EngineError
	if !errors.As(err, &engErr) || engErr.Code != speech.CodeFailed {
		t.Errorf("done(%v), want synthesis-failed", err)
	}
}

func TestInputCallbacks(t *testing.T) {
	r, stop := startRelay(t, ":18096")
	defer stop()

	var keys, moves atomic.Int32
	var joined atomic.Value
	r.OnKey(func(pageID string, key *protocol.KeyData) {
		if key.Key == "w" && key.Down {
			keys.Add(1)
		}
	})
	r.OnMouse(func(pageID string, mouse *protocol.MouseData) {
		if mouse.Action == protocol.MouseMove && mouse.DX == 10 {
			moves.Add(1)
		}
	})
	r.OnJoin(func(pageID string) { joined.Store(pageID) })

	ws := dialPage(t, r, "ws://localhost:18096/ws/page/input")
	defer ws.Close()

	send(t, ws, protocol.TypeKey, protocol.KeyData{Key: "w", Down: true})
	send(t, ws, protocol.TypeMouse, protocol.MouseData{Action: protocol.MouseMove, DX: 10})
	send(t, ws, protocol.TypePing, nil)

	if msg := read(t, ws); msg.Type != protocol.TypePong {
		t.Errorf("Type = %s, want pong", msg.Type)
	}
	if keys.Load() != 1 || moves.Load() != 1 {
		t.Errorf("keys = %d, moves = %d", keys.Load(), moves.Load())
	}
	if joined.Load() != "input" {
		t.Errorf("joined = %v, want input", joined.Load())
	}
	if s := r.GetStats(); s.MessagesReceived < 3 {
		t.Errorf("MessagesReceived = %d", s.MessagesReceived)
	}
}

func TestSendToUnknownPage(t *testing.T) {
	r := New(nil)
	msg, _ := protocol.NewMessage(protocol.TypeCancel, nil)
	if err := r.Send("nobody", msg); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("Send() = %v, want ErrPageNotFound", err)
	}
}
