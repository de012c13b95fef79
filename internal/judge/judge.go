// Package judge orchestrates a single pronunciation check: decode the audio,
// recognize it with the expected word as a phrase hint, normalize both sides
// and compare. A Judge never returns an error past its boundary; every
// failure path is folded into the [Result] it produces.
package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vplearn/tonetutor/internal/diagnose"
	"github.com/vplearn/tonetutor/internal/normalize"
	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// Kind classifies why a check did not produce a judgement.
type Kind string

const (
	// KindNone marks a successful check, correct or not.
	KindNone Kind = ""

	// KindInvalidInput marks a missing audio payload or expected word.
	KindInvalidInput Kind = "invalid_input"

	// KindInvalidAudio marks audio that could not be decoded.
	KindInvalidAudio Kind = "invalid_audio"

	// KindNotUnderstood marks audio that produced no transcript.
	KindNotUnderstood Kind = "not_understood"

	// KindServiceError marks a recognition transport failure.
	KindServiceError Kind = "service_error"

	// KindInternal marks an unexpected failure inside the check itself.
	KindInternal Kind = "internal"
)

// User-facing messages. The error strings carry detail for the caller's
// logs; the messages are what a learner sees.
const (
	msgCorrect       = "Correct!"
	msgTryAgain      = "Try again"
	msgNoAudio       = "No audio data provided"
	msgNoWord        = "No expected word provided"
	msgInvalidAudio  = "Invalid audio data"
	msgNotUnderstood = "Please try again - speak clearly"
	msgUnavailable   = "Service temporarily unavailable"
	msgInternal      = "An error occurred. Please try again"
)

const defaultHintBoost = 20

// Result is the outcome of one pronunciation check.
//
// When Success is true the attempt was judged: Correct, Recognized and
// Confidence are populated and Kind is [KindNone]. When Success is false
// the attempt never reached a judgement: Kind and Error describe why.
// Confidence is informational only and never gates correctness.
type Result struct {
	Success    bool
	Correct    bool
	Recognized string
	Confidence float64
	Message    string
	Error      string
	Kind       Kind
}

// Option is a functional option for configuring a [Judge].
type Option func(*Judge)

// WithLanguage sets the recognition language. Default: "vi-VN".
func WithLanguage(lang string) Option {
	return func(j *Judge) {
		if lang != "" {
			j.language = lang
		}
	}
}

// WithHintBoost sets the phrase-hint bias strength. Default: 20.
func WithHintBoost(boost float64) Option {
	return func(j *Judge) {
		j.hintBoost = boost
	}
}

// WithNearMiss attaches a [diagnose.NearMiss] that is consulted, log-only,
// on incorrect attempts. When nil (the default) the stage is skipped.
func WithNearMiss(n *diagnose.NearMiss) Option {
	return func(j *Judge) {
		j.nearMiss = n
	}
}

// WithMaxDuration sets the recording length above which a warning is logged.
// Zero (the default) disables the check. Long recordings are still judged;
// clients are expected to cap recording length themselves.
func WithMaxDuration(d time.Duration) Option {
	return func(j *Judge) {
		j.maxDuration = d
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(j *Judge) {
		if l != nil {
			j.logger = l
		}
	}
}

// Judge checks pronunciation attempts against expected words.
// It is read-only after construction and safe for concurrent use.
type Judge struct {
	rec         recognize.Recognizer
	language    string
	hintBoost   float64
	maxDuration time.Duration
	nearMiss    *diagnose.NearMiss
	logger      *slog.Logger
}

// New returns a Judge that recognizes audio through rec, typically a
// [recognize.Chain].
func New(rec recognize.Recognizer, opts ...Option) *Judge {
	j := &Judge{
		rec:       rec,
		language:  "vi-VN",
		hintBoost: defaultHintBoost,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(j)
	}
	return j
}

// Check judges one attempt. base64Audio is a base64-encoded RIFF/WAVE
// container; expectedWord is the word the learner was asked to say.
//
// Check is deterministic for a deterministic recognizer: identical inputs
// yield identical Results.
func (j *Judge) Check(ctx context.Context, base64Audio, expectedWord string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("pronunciation check panicked", "panic", r)
			res = Result{
				Success: false,
				Kind:    KindInternal,
				Error:   fmt.Sprintf("Unexpected error: %v", r),
				Message: msgInternal,
			}
		}
	}()

	if base64Audio == "" {
		return Result{Success: false, Kind: KindInvalidInput, Error: "Missing audio_data", Message: msgNoAudio}
	}
	if expectedWord == "" {
		return Result{Success: false, Kind: KindInvalidInput, Error: "Missing expected_word", Message: msgNoWord}
	}

	audio, err := wavcodec.DecodeBase64(base64Audio)
	if err != nil {
		j.logger.Warn("audio decode failed", "error", err)
		return Result{Success: false, Kind: KindInvalidAudio, Error: err.Error(), Message: msgInvalidAudio}
	}
	if j.maxDuration > 0 {
		if d := audio.Duration(); d > j.maxDuration {
			j.logger.Warn("recording longer than expected", "duration", d, "max", j.maxDuration)
		}
	}

	req := recognize.Request{
		Language: j.language,
		Hints:    []recognize.PhraseHint{{Phrase: expectedWord, Boost: j.hintBoost}},
	}
	recres, err := j.rec.Recognize(ctx, audio, req)
	switch {
	case err == nil:
	case errors.Is(err, recognize.ErrNoMatch):
		return Result{Success: false, Kind: KindNotUnderstood, Error: "Could not understand audio", Message: msgNotUnderstood}
	case errors.Is(err, recognize.ErrUnavailable):
		j.logger.Error("recognition service error", "error", err)
		return Result{
			Success: false,
			Kind:    KindServiceError,
			Error:   fmt.Sprintf("Speech recognition service error: %v", err),
			Message: msgUnavailable,
		}
	default:
		j.logger.Error("recognition failed unexpectedly", "error", err)
		return Result{
			Success: false,
			Kind:    KindInternal,
			Error:   fmt.Sprintf("Unexpected error: %v", err),
			Message: msgInternal,
		}
	}

	expected := normalize.Transcript(expectedWord)
	recognized := normalize.Transcript(recres.Text)
	correct := recognized == expected

	if !correct && j.nearMiss != nil {
		j.nearMiss.Observe(expected, recognized)
	}

	msg := msgTryAgain
	if correct {
		msg = msgCorrect
	}
	return Result{
		Success:    true,
		Correct:    correct,
		Recognized: recognized,
		Confidence: recres.Confidence,
		Message:    msg,
	}
}
