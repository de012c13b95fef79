// Package mock provides a scripted test double for the recognize package.
//
// Configure the Recognizer's exported fields before use: set Result/Err for
// a fixed outcome, or Script for per-call outcomes consumed in order. Every
// call is recorded in Calls for later inspection.
//
// Example:
//
//	rec := &mock.Recognizer{Result: recognize.Result{Text: "cá", Confidence: 0.9}}
//	res, err := rec.Recognize(ctx, payload, recognize.Request{Language: "vi-VN"})
package mock

import (
	"context"
	"sync"

	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// Ensure Recognizer implements recognize.Recognizer at compile time.
var _ recognize.Recognizer = (*Recognizer)(nil)

// Call records a single invocation of Recognize.
type Call struct {
	// Audio is the payload passed to Recognize.
	Audio wavcodec.Payload

	// Req is the request passed to Recognize.
	Req recognize.Request
}

// Outcome is one scripted response.
type Outcome struct {
	Result recognize.Result
	Err    error
}

// Recognizer is a mock implementation of recognize.Recognizer.
type Recognizer struct {
	mu sync.Mutex

	// Result and Err are returned by every call when Script is empty.
	Result recognize.Result
	Err    error

	// Script, when non-empty, supplies per-call outcomes consumed in order.
	// After the script is exhausted, the last outcome repeats.
	Script []Outcome

	// Calls records every invocation in order.
	Calls []Call

	calls int
}

// Recognize records the call and returns the scripted outcome.
func (r *Recognizer) Recognize(ctx context.Context, audio wavcodec.Payload, req recognize.Request) (recognize.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls = append(r.Calls, Call{Audio: audio, Req: req})
	r.calls++

	if len(r.Script) == 0 {
		return r.Result, r.Err
	}
	idx := r.calls - 1
	if idx >= len(r.Script) {
		idx = len(r.Script) - 1
	}
	out := r.Script[idx]
	return out.Result, out.Err
}

// CallCount returns the number of Recognize invocations. Thread-safe.
func (r *Recognizer) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Reset clears all recorded calls. Thread-safe.
func (r *Recognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = nil
	r.calls = 0
}
