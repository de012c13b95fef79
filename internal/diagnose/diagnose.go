// Package diagnose holds the diagnostic seams of the recognition pipeline.
// Everything in this package is observational: results are logged and
// discarded, and never influence a judgement.
//
// Two probes are provided:
//
//   - [Reprobe] re-runs recognition in a different language when the primary
//     language produced no transcript. A hit tells an operator the service
//     and audio path are healthy and the problem is the utterance itself.
//   - [NearMiss] scores an incorrect attempt against the expected word using
//     Double Metaphone codes and Jaro-Winkler similarity, surfacing attempts
//     that were phonetically close to correct.
package diagnose

import (
	"context"
	"log/slog"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

const (
	defaultReprobeLanguage = "en-US"

	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// ReprobeOption is a functional option for configuring a [Reprobe].
type ReprobeOption func(*Reprobe)

// WithReprobeLanguage sets the language used for the diagnostic pass.
// Default: "en-US".
func WithReprobeLanguage(lang string) ReprobeOption {
	return func(r *Reprobe) {
		if lang != "" {
			r.language = lang
		}
	}
}

// WithReprobeLogger sets the logger. Defaults to [slog.Default].
func WithReprobeLogger(l *slog.Logger) ReprobeOption {
	return func(r *Reprobe) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reprobe re-submits audio for recognition in an alternate language.
// Its [Reprobe.Probe] method satisfies [recognize.NoMatchProbe].
type Reprobe struct {
	rec      recognize.Recognizer
	language string
	logger   *slog.Logger
}

// NewReprobe returns a Reprobe that sends audio to rec.
func NewReprobe(rec recognize.Recognizer, opts ...ReprobeOption) *Reprobe {
	r := &Reprobe{
		rec:      rec,
		language: defaultReprobeLanguage,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Probe runs the diagnostic recognition pass. All outcomes are logged;
// none are returned.
func (r *Reprobe) Probe(ctx context.Context, audio wavcodec.Payload) {
	res, err := r.rec.Recognize(ctx, audio, recognize.Request{Language: r.language})
	if err != nil {
		r.logger.Info("diagnostic recognition pass failed",
			"language", r.language,
			"error", err,
		)
		return
	}
	r.logger.Info("diagnostic recognition pass produced a transcript",
		"language", r.language,
		"text", res.Text,
		"confidence", res.Confidence,
	)
}

// NearMissOption is a functional option for configuring a [NearMiss].
type NearMissOption func(*NearMiss)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-overlapping attempt to count as near. Default: 0.70.
func WithPhoneticThreshold(threshold float64) NearMissOption {
	return func(n *NearMiss) {
		n.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when the
// attempt shares no phonetic code with the expected word. Default: 0.85.
func WithFuzzyThreshold(threshold float64) NearMissOption {
	return func(n *NearMiss) {
		n.fuzzyThreshold = threshold
	}
}

// WithNearMissLogger sets the logger. Defaults to [slog.Default].
func WithNearMissLogger(l *slog.Logger) NearMissOption {
	return func(n *NearMiss) {
		if l != nil {
			n.logger = l
		}
	}
}

// NearMiss scores incorrect attempts against the expected word.
// It is read-only after construction and safe for concurrent use.
type NearMiss struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
	logger            *slog.Logger
}

// NewNearMiss returns a NearMiss scorer with the supplied options.
func NewNearMiss(opts ...NearMissOption) *NearMiss {
	n := &NearMiss{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
		logger:            slog.Default(),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Report describes how close an attempt came to the expected word.
type Report struct {
	// Score is the Jaro-Winkler similarity of the two strings.
	Score float64

	// PhoneticMatch is true when the attempt and the expected word share at
	// least one Double Metaphone code.
	PhoneticMatch bool

	// Near is true when the attempt clears the configured thresholds.
	Near bool
}

// Analyze scores recognized against expected. Both inputs are compared
// case-insensitively on their trimmed forms.
func (n *NearMiss) Analyze(expected, recognized string) Report {
	expected = strings.ToLower(strings.TrimSpace(expected))
	recognized = strings.ToLower(strings.TrimSpace(recognized))
	if expected == "" || recognized == "" || expected == recognized {
		return Report{}
	}

	r := Report{
		Score:         matchr.JaroWinkler(recognized, expected, false),
		PhoneticMatch: codesOverlap(codesFor(recognized), codesFor(expected)),
	}
	if r.PhoneticMatch {
		r.Near = r.Score >= n.phoneticThreshold
	} else {
		r.Near = r.Score >= n.fuzzyThreshold
	}
	return r
}

// Observe analyzes an incorrect attempt and logs it when it was close.
func (n *NearMiss) Observe(expected, recognized string) {
	r := n.Analyze(expected, recognized)
	if !r.Near {
		return
	}
	n.logger.Info("attempt was phonetically close to the expected word",
		"expected", expected,
		"recognized", recognized,
		"score", r.Score,
		"phonetic_match", r.PhoneticMatch,
	)
}

// codesFor returns the union of Double Metaphone codes across the
// whitespace-separated tokens of s. Empty codes are excluded.
func codesFor(s string) map[string]struct{} {
	tokens := strings.Fields(s)
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, sec := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if sec != "" {
			codes[sec] = struct{}{}
		}
	}
	return codes
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
