package recognize

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// Compile-time interface assertion.
var _ Recognizer = (*Chain)(nil)

// NoMatchProbe receives the audio of a call whose final outcome was
// [ErrNoMatch]. It exists purely for diagnostics (e.g. re-recognizing in a
// different language to tell silence from wrong-language speech) and must not
// influence the call's result.
type NoMatchProbe func(ctx context.Context, audio wavcodec.Payload)

// chainEntry pairs a recognizer with the name used in logs and telemetry.
type chainEntry struct {
	name string
	rec  Recognizer
}

// Chain tries each recognizer in registration order until one succeeds.
//
// The chain is a one-shot ordered sequence: every recognizer is attempted at
// most once per call, there are no retries and no backoff, and a failure of
// an earlier entry is silent to the caller (logged only). When every entry
// fails, the error of the final entry is returned unmasked so the caller
// sees what the last resort actually reported.
//
// Chain holds no mutable state and is safe for concurrent use.
type Chain struct {
	entries    []chainEntry
	logger     *slog.Logger
	probe      NoMatchProbe
	onFallback func(ctx context.Context, from string)
}

// ChainOption configures a [Chain].
type ChainOption func(*Chain)

// WithLogger sets the logger used for fallthrough messages. Defaults to
// [slog.Default].
func WithLogger(l *slog.Logger) ChainOption {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNoMatchProbe installs a diagnostic hook invoked when the final entry
// reports [ErrNoMatch]. A nil probe disables the hook.
func WithNoMatchProbe(p NoMatchProbe) ChainOption {
	return func(c *Chain) { c.probe = p }
}

// WithFallbackFunc installs a hook invoked each time an entry fails and a
// later entry is about to be tried. Used to count fallthroughs in telemetry.
func WithFallbackFunc(fn func(ctx context.Context, from string)) ChainOption {
	return func(c *Chain) { c.onFallback = fn }
}

// NewChain builds a chain from the given entries in order. Use [Step] to
// name each recognizer.
func NewChain(entries []Step, opts ...ChainOption) *Chain {
	c := &Chain{logger: slog.Default()}
	for _, e := range entries {
		if e.Recognizer == nil {
			continue
		}
		c.entries = append(c.entries, chainEntry{name: e.Name, rec: e.Recognizer})
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Step names a recognizer for use in a [Chain].
type Step struct {
	Name       string
	Recognizer Recognizer
}

// Recognize implements [Recognizer]. It tries each entry in order, returning
// the first success. Hints are passed through unchanged; entries without
// hint support ignore them by their own contract.
func (c *Chain) Recognize(ctx context.Context, audio wavcodec.Payload, req Request) (Result, error) {
	var lastErr error
	for i, entry := range c.entries {
		res, err := entry.rec.Recognize(ctx, audio, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if i < len(c.entries)-1 {
			c.logger.Warn("recognizer failed, trying next",
				"recognizer", entry.name,
				"next", c.entries[i+1].name,
				"error", err,
			)
			if c.onFallback != nil {
				c.onFallback(ctx, entry.name)
			}
		}
	}

	if lastErr == nil {
		return Result{}, ErrNoMatch
	}
	if c.probe != nil && errors.Is(lastErr, ErrNoMatch) {
		c.probe(ctx, audio)
	}
	return Result{}, lastErr
}
