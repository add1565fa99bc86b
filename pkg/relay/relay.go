// Package relay connects viewer pages to the server over a bidirectional
// websocket. Pages forward keyboard and mouse input and speak utterances with
// their own speech synthesis, which makes the relay a speech.Engine.
package relay

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-synth/pkg/protocol"
	"github.com/teslashibe/go-synth/pkg/speech"
)

// ErrPageNotFound is returned when sending to an unknown page.
var ErrPageNotFound = errors.New("relay: page not connected")

// Page is a connected viewer page
type Page struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send writes a message to the page
func (p *Page) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}

// utterance is the one the pages are currently speaking
type utterance struct {
	id   string
	done func(error)
	once sync.Once
}

func (u *utterance) finish(err error) {
	u.once.Do(func() { u.done(err) })
}

// Relay manages page connections
type Relay struct {
	logger *slog.Logger

	mu      sync.RWMutex
	pages   map[string]*Page
	voices  []speech.Voice
	active  *utterance
	onKey   func(pageID string, key *protocol.KeyData)
	onMouse func(pageID string, mouse *protocol.MouseData)
	onJoin  func(pageID string)

	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
}

// New creates a relay
func New(logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		logger: logger.With("component", "relay"),
		pages:  make(map[string]*Page),
	}
}

// OnKey sets the callback for keyboard events
func (r *Relay) OnKey(callback func(pageID string, key *protocol.KeyData)) {
	r.mu.Lock()
	r.onKey = callback
	r.mu.Unlock()
}

// OnMouse sets the callback for mouse events
func (r *Relay) OnMouse(callback func(pageID string, mouse *protocol.MouseData)) {
	r.mu.Lock()
	r.onMouse = callback
	r.mu.Unlock()
}

// OnJoin sets the callback for newly connected pages
func (r *Relay) OnJoin(callback func(pageID string)) {
	r.mu.Lock()
	r.onJoin = callback
	r.mu.Unlock()
}

// RegisterRoutes mounts the page endpoints. The router must already reject
// non-upgrade requests under /ws.
func (r *Relay) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/page", websocket.New(r.handlePage))
	router.Get("/ws/page/:id", websocket.New(r.handlePage))
}

// handlePage serves one page connection
func (r *Relay) handlePage(c *websocket.Conn) {
	pageID := c.Params("id")
	if pageID == "" {
		pageID = uuid.NewString()
	}

	page := &Page{
		ID:        pageID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	r.mu.Lock()
	r.pages[pageID] = page
	count := len(r.pages)
	onJoin := r.onJoin
	r.mu.Unlock()
	r.logger.Info("page connected", "page", pageID, "pages", count)

	if onJoin != nil {
		onJoin(pageID)
	}

	defer r.removePage(pageID)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			r.logger.Debug("page read ended", "page", pageID, "error", err)
			return
		}

		page.mu.Lock()
		page.LastSeen = time.Now()
		page.mu.Unlock()

		r.messagesReceived.Add(1)
		r.handleMessage(page, data)
	}
}

func (r *Relay) removePage(pageID string) {
	r.mu.Lock()
	delete(r.pages, pageID)
	count := len(r.pages)
	var orphan *utterance
	if count == 0 && r.active != nil {
		orphan = r.active
		r.active = nil
	}
	r.mu.Unlock()
	r.logger.Info("page disconnected", "page", pageID, "pages", count)

	if orphan != nil {
		orphan.finish(&speech.EngineError{Code: speech.CodeFailed, Message: "page disconnected"})
	}
}

// handleMessage processes an incoming message from a page
func (r *Relay) handleMessage(page *Page, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		r.logger.Warn("parse error", "page", page.ID, "error", err)
		return
	}

	r.mu.RLock()
	keyCb := r.onKey
	mouseCb := r.onMouse
	r.mu.RUnlock()

	switch msg.Type {
	case protocol.TypeKey:
		if keyCb != nil {
			if key, err := msg.GetKeyData(); err == nil {
				keyCb(page.ID, key)
			}
		}

	case protocol.TypeMouse:
		if mouseCb != nil {
			if mouse, err := msg.GetMouseData(); err == nil {
				mouseCb(page.ID, mouse)
			}
		}

	case protocol.TypeVoices:
		if v, err := msg.GetVoicesData(); err == nil {
			r.setVoices(v.Voices)
		}

	case protocol.TypeSpeechStart:
		if ev, err := msg.GetSpeechEventData(); err == nil {
			r.logger.Debug("page started speaking", "page", page.ID, "id", ev.ID)
		}

	case protocol.TypeSpeechEnd:
		if ev, err := msg.GetSpeechEventData(); err == nil {
			r.resolve(ev.ID, nil)
		}

	case protocol.TypeSpeechError:
		if ev, err := msg.GetSpeechEventData(); err == nil {
			code := ev.Error
			if code == "" {
				code = speech.CodeFailed
			}
			r.resolve(ev.ID, &speech.EngineError{Code: code})
		}

	case protocol.TypePing:
		pong, err := protocol.NewPongMessage(msg.Timestamp, time.Now().UnixMilli())
		if err == nil {
			r.messagesSent.Add(1)
			page.Send(pong)
		}
	}
}

func (r *Relay) setVoices(voices []protocol.VoiceData) {
	converted := make([]speech.Voice, len(voices))
	for i, v := range voices {
		converted[i] = speech.Voice{Name: v.Name, Lang: v.Lang, Default: v.Default}
	}
	r.mu.Lock()
	r.voices = converted
	r.mu.Unlock()
	r.logger.Debug("voices updated", "count", len(converted))
}

// resolve finishes the active utterance if id matches it
func (r *Relay) resolve(id string, err error) {
	r.mu.Lock()
	u := r.active
	if u == nil || u.id != id {
		r.mu.Unlock()
		return
	}
	r.active = nil
	r.mu.Unlock()

	u.finish(err)
}

// Speak sends u to every connected page. The first end or error report
// for u resolves it.
func (r *Relay) Speak(u speech.Utterance, done func(error)) error {
	msg, err := protocol.NewSpeakMessage(toSpeakData(u))
	if err != nil {
		return err
	}

	next := &utterance{id: u.ID, done: done}
	r.mu.Lock()
	if len(r.pages) == 0 {
		r.mu.Unlock()
		return speech.ErrNotConnected
	}
	prev := r.active
	r.active = next
	r.mu.Unlock()

	if prev != nil {
		prev.finish(&speech.EngineError{Code: speech.CodeInterrupted})
	}
	if sent := r.Broadcast(msg); sent == 0 {
		r.resolve(u.ID, speech.ErrNotConnected)
	}
	return nil
}

// Cancel interrupts the active utterance and tells pages to stop speaking
func (r *Relay) Cancel() {
	r.mu.Lock()
	u := r.active
	r.active = nil
	r.mu.Unlock()

	if u != nil {
		u.finish(&speech.EngineError{Code: speech.CodeInterrupted})
	}
	if msg, err := protocol.NewMessage(protocol.TypeCancel, nil); err == nil {
		r.Broadcast(msg)
	}
}

// Resume asks pages to resume a paused speech engine
func (r *Relay) Resume() {
	if msg, err := protocol.NewMessage(protocol.TypeResume, nil); err == nil {
		r.Broadcast(msg)
	}
}

// Voices returns the voices most recently reported by a page
func (r *Relay) Voices() []speech.Voice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]speech.Voice(nil), r.voices...)
}

// Send sends a message to one page
func (r *Relay) Send(pageID string, msg *protocol.Message) error {
	r.mu.RLock()
	page, ok := r.pages[pageID]
	r.mu.RUnlock()

	if !ok {
		return ErrPageNotFound
	}
	r.messagesSent.Add(1)
	return page.Send(msg)
}

// Broadcast sends a message to all pages and returns how many accepted it
func (r *Relay) Broadcast(msg *protocol.Message) int {
	r.mu.RLock()
	pages := make([]*Page, 0, len(r.pages))
	for _, p := range r.pages {
		pages = append(pages, p)
	}
	r.mu.RUnlock()

	sent := 0
	for _, page := range pages {
		r.messagesSent.Add(1)
		if err := page.Send(msg); err != nil {
			r.logger.Warn("broadcast error", "page", page.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// PageCount returns the number of connected pages
func (r *Relay) PageCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

// Stats contains relay statistics
type Stats struct {
	PageCount        int    `json:"page_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
}

// GetStats returns relay statistics
func (r *Relay) GetStats() Stats {
	return Stats{
		PageCount:        r.PageCount(),
		MessagesReceived: r.messagesReceived.Load(),
		MessagesSent:     r.messagesSent.Load(),
	}
}

func toSpeakData(u speech.Utterance) protocol.SpeakData {
	data := protocol.SpeakData{
		ID:     u.ID,
		Text:   u.Text,
		Lang:   u.Lang,
		Rate:   u.Rate,
		Pitch:  u.Pitch,
		Volume: u.Volume,
	}
	if u.Voice != nil {
		data.Voice = &protocol.VoiceData{Name: u.Voice.Name, Lang: u.Voice.Lang, Default: u.Voice.Default}
	}
	return data
}

// Verify Relay implements the speech engine interfaces at compile time.
var (
	_ speech.Engine  = (*Relay)(nil)
	_ speech.Resumer = (*Relay)(nil)
)
