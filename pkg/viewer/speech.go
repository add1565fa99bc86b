package viewer

import (
	"context"
	"errors"

	"github.com/teslashibe/go-synth/pkg/chat"
	"github.com/teslashibe/go-synth/pkg/speech"
)

// Chat submits a message to the session. The reply becomes the subtitle and
// is spoken in the background.
func (v *Viewer) Chat(ctx context.Context, message string) (string, error) {
	if v.session == nil {
		return "", ErrNoChat
	}
	return v.session.Submit(ctx, message)
}

// Transcript returns the chat session state.
func (v *Viewer) Transcript() chat.Snapshot {
	if v.session == nil {
		return chat.Snapshot{}
	}
	return v.session.Snapshot()
}

// Say speaks text without going through chat. It blocks until the utterance
// finishes, is superseded or ctx ends.
func (v *Viewer) Say(ctx context.Context, text string) (speech.Outcome, error) {
	if v.seq == nil {
		return speech.OutcomeSkipped, nil
	}
	return v.seq.Speak(ctx, text)
}

// StopSpeech silences the robot.
func (v *Viewer) StopSpeech() {
	if v.seq != nil {
		v.seq.Stop()
	}

	v.mu.Lock()
	v.subtitle.Speaking = false
	v.speakingID = ""
	v.mu.Unlock()
	v.publishState()
}

func (v *Viewer) handleReply(reply string) {
	v.mu.Lock()
	v.subtitle = Subtitle{Message: reply}
	closed := v.closed
	if !closed && v.seq != nil {
		v.inFlight++
		v.speeches.Add(1)
	}
	v.mu.Unlock()
	v.publishState()

	if closed || v.seq == nil {
		return
	}
	go v.speak(reply)
}

func (v *Viewer) speak(text string) {
	defer v.speeches.Done()
	defer func() {
		v.mu.Lock()
		v.inFlight--
		v.mu.Unlock()
	}()

	outcome, err := v.seq.Speak(context.Background(), text)
	switch {
	case errors.Is(err, speech.ErrDisposed):
	case err != nil:
		v.logger.Error("speech failed", "error", err)
	default:
		v.logger.Debug("speech finished", "outcome", outcome.String())
	}
}

func (v *Viewer) handleSpeechStart(r speech.Result) {
	v.mu.Lock()
	v.speakingID = r.ID
	v.subtitle.Speaking = true
	v.subtitle.Error = ""
	v.mu.Unlock()
	v.publishState()
}

func (v *Viewer) handleSpeechDone(r speech.Result) {
	v.mu.Lock()
	if r.ID == v.speakingID {
		v.speakingID = ""
		v.subtitle.Speaking = false
	}
	if r.Outcome == speech.OutcomeFailed && r.Err != nil {
		v.subtitle.Error = r.Err.Error()
	}
	v.mu.Unlock()
	v.publishState()
}
