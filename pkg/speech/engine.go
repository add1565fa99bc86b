// Package speech sequences robot replies through a single speech engine.
//
// A Sequencer accepts text, cancels whatever is playing, waits a short settle
// delay and hands the newest text to the Engine. Only one utterance is ever
// active. Engines are pluggable: the browser relay speaks through the page's
// speech synthesis, the cloud engine plays synthesized audio.
package speech

// Engine is a speech synthesis backend that plays one utterance at a time.
//
// Speak starts u and must eventually call done exactly once: with nil when
// playback completes, or with an error. Cancel stops the active utterance; its
// done callback receives an error matching ErrInterrupted. done may be called
// from any goroutine, including synchronously from Speak or Cancel.
type Engine interface {
	Speak(u Utterance, done func(error)) error
	Cancel()
	Voices() []Voice
}

// Resumer is implemented by engines that can be paused.
type Resumer interface {
	Resume()
}

// Voice is a synthesis voice offered by an engine.
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// Utterance is one piece of text handed to an engine.
type Utterance struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Voice  *Voice  `json:"voice,omitempty"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}
