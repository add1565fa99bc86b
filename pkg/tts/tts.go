// Package tts synthesizes robot replies into audio for the cloud speech engine.
//
// The browser speech engine is the default voice of the showcase. When the page
// cannot speak (no voices installed, kiosk browsers), the server synthesizes
// audio with a Provider and streams it to the page instead.
//
// Example usage:
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice(tts.VoiceOnyx),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Olá, eu sou o SYNTH-01")
//	// result.Audio contains MP3 bytes
package tts

import (
	"context"
	"time"
	"unicode/utf8"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Voice returns the configured voice ID.
	Voice() string

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding and sample rate.
	Format AudioFormat

	// Duration is the estimated audio playback duration.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request latency in milliseconds.
	LatencyMs int64
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	Encoding   Encoding `json:"encoding"`
	SampleRate int      `json:"sample_rate"`
	Channels   int      `json:"channels"`
}

// MIMEType returns the content type the browser needs to decode the audio.
func (f AudioFormat) MIMEType() string {
	switch f.Encoding {
	case EncodingMP3:
		return "audio/mpeg"
	case EncodingOpus:
		return "audio/ogg"
	case EncodingWAV:
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// Encoding represents audio encoding types.
type Encoding string

const (
	EncodingMP3  Encoding = "mp3"
	EncodingOpus Encoding = "opus"
	EncodingWAV  Encoding = "wav"
	EncodingPCM  Encoding = "pcm"
)

// speechRate is a rough speaking rate used when a provider cannot report
// the playback length of compressed audio.
const speechRate = 65 * time.Millisecond

// EstimateDuration guesses how long text takes to speak.
func EstimateDuration(text string) time.Duration {
	return time.Duration(utf8.RuneCountInString(text)) * speechRate
}
