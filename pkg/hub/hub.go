package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/speech"
	"github.com/teslashibe/go-synth/pkg/tts"
)

// Hub maintains the set of subscribers and broadcasts messages to them
type Hub struct {
	name   string
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan Frame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	running atomic.Bool
	dropped atomic.Uint64
	skipped atomic.Uint64
}

// New creates a new Hub
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		logger:     logger.With("component", "hub", "hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Frame, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run fans messages out to subscribers until ctx is done
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", count)

		case frame := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					if frame.Lossy {
						h.skipped.Add(1)
						continue
					}
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) shutdown() {
	h.running.Store(false)
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// Handler returns the websocket handler subscribing connections to the hub.
// Mount it behind an upgrade check.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		if client := NewClient(h, conn); client != nil {
			client.Run()
		}
	})
}

// Broadcast queues a frame for all connected clients
func (h *Hub) Broadcast(f Frame) {
	select {
	case h.broadcast <- f:
	default:
		h.dropped.Add(1)
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(TextFrame(data))
	return nil
}

// BroadcastMessage broadcasts a protocol message
func (h *Hub) BroadcastMessage(msg *protocol.Message) error {
	f, err := frameFor(msg)
	if err != nil {
		return err
	}
	h.Broadcast(f)
	return nil
}

// PlayAudio streams synthesized speech to every subscriber.
func (h *Hub) PlayAudio(id string, audio []byte, format tts.AudioFormat) error {
	if h.ClientCount() == 0 {
		return speech.ErrNotConnected
	}
	msg, err := protocol.NewAudioMessage(id, format.MIMEType(), audio)
	if err != nil {
		return err
	}
	return h.BroadcastMessage(msg)
}

// StopAudio tells subscribers to stop playback.
func (h *Hub) StopAudio() {
	msg, err := protocol.NewMessage(protocol.TypeAudioStop, nil)
	if err != nil {
		return
	}
	h.BroadcastMessage(msg)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many broadcasts were dropped on a full queue
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Skipped returns how many lossy frames lagging clients missed
func (h *Hub) Skipped() uint64 {
	return h.skipped.Load()
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Verify Hub implements speech.AudioSink at compile time.
var _ speech.AudioSink = (*Hub)(nil)
