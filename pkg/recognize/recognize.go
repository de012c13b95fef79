// Package recognize defines the speech recognition abstraction used by the
// pronunciation pipeline.
//
// A [Recognizer] turns one decoded audio payload into one transcription
// [Result] per call. Implementations live in subpackages:
//
//   - [github.com/vplearn/tonetutor/pkg/recognize/googlerest] — cloud REST
//     endpoint authenticated with an API key; supports phrase hints.
//   - [github.com/vplearn/tonetutor/pkg/recognize/googlecloud] — cloud SDK
//     client authenticated with ambient credentials; supports phrase hints.
//   - [github.com/vplearn/tonetutor/pkg/recognize/webspeech] — generic web
//     endpoint without hint support; the fallback of last resort.
//   - [github.com/vplearn/tonetutor/pkg/recognize/mock] — scripted test double.
//
// [Chain] composes recognizers into the ordered fallback sequence the
// pipeline uses: one attempt per recognizer per call, no retries.
package recognize

import (
	"context"
	"errors"

	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// ErrNoMatch is returned when the recognition service processed the audio but
// produced no transcript (silence, noise, or unintelligible speech). Match
// with [errors.Is].
var ErrNoMatch = errors.New("no speech recognized")

// ErrUnavailable is returned on transport-level failures: timeouts, refused
// connections, and non-success responses from the recognition service. Match
// with [errors.Is].
var ErrUnavailable = errors.New("recognition service unavailable")

// PhraseHint biases the recognizer towards a specific word or phrase when
// transcribing acoustically similar alternatives. Not every recognizer
// supports hints; those that do not ignore them.
type PhraseHint struct {
	// Phrase is the word or phrase to bias towards.
	Phrase string

	// Boost is the bias weight. Higher values make the phrase more likely to
	// be selected over acoustically similar alternatives.
	Boost float64
}

// Request carries the per-call recognition parameters.
type Request struct {
	// Language is the BCP-47 language tag of the expected speech (e.g. "vi-VN").
	Language string

	// Hints optionally biases recognition towards specific phrases.
	// Recognizers without hint support ignore this field.
	Hints []PhraseHint
}

// Result is a single transcription outcome.
type Result struct {
	// Text is the best-guess transcript, exactly as the service returned it.
	Text string

	// Confidence is the service's probability-like score for Text, in [0, 1].
	// It is informational only and never used as a correctness threshold.
	Confidence float64
}

// Recognizer transcribes one audio payload per call.
//
// Implementations must be safe for concurrent use and must not keep state
// across calls: every invocation is an independent request-response exchange.
type Recognizer interface {
	// Recognize submits audio to the recognition service and returns the best
	// transcription. It returns an error matching [ErrNoMatch] when the
	// service produced no transcript and [ErrUnavailable] on transport-level
	// failures. The context bounds the outbound call.
	Recognize(ctx context.Context, audio wavcodec.Payload, req Request) (Result, error)
}
