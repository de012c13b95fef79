package recognize_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/recognize/mock"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

func testPayload() wavcodec.Payload {
	return wavcodec.Payload{PCM: []byte{1, 2, 3, 4}, SampleRate: 16000, SampleWidth: 2, Channels: 1}
}

func TestChain_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &mock.Recognizer{Result: recognize.Result{Text: "cá", Confidence: 0.93}}
	fallback := &mock.Recognizer{Result: recognize.Result{Text: "never", Confidence: 0.1}}

	chain := recognize.NewChain([]recognize.Step{
		{Name: "cloud", Recognizer: primary},
		{Name: "web", Recognizer: fallback},
	})

	res, err := chain.Recognize(context.Background(), testPayload(), recognize.Request{Language: "vi-VN"})
	if err != nil {
		t.Fatalf("Recognize: unexpected error: %v", err)
	}
	if res.Text != "cá" {
		t.Errorf("Text: want %q, got %q", "cá", res.Text)
	}
	if fallback.CallCount() != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.CallCount())
	}
}

func TestChain_FallsThroughOnFailure(t *testing.T) {
	t.Parallel()

	primary := &mock.Recognizer{Err: fmt.Errorf("timeout: %w", recognize.ErrUnavailable)}
	fallback := &mock.Recognizer{Result: recognize.Result{Text: "bò", Confidence: 0.7}}

	var fellBackFrom []string
	chain := recognize.NewChain([]recognize.Step{
		{Name: "cloud", Recognizer: primary},
		{Name: "web", Recognizer: fallback},
	}, recognize.WithFallbackFunc(func(_ context.Context, from string) {
		fellBackFrom = append(fellBackFrom, from)
	}))

	res, err := chain.Recognize(context.Background(), testPayload(), recognize.Request{Language: "vi-VN"})
	if err != nil {
		t.Fatalf("Recognize: expected fallback result, got error: %v", err)
	}
	if res.Text != "bò" {
		t.Errorf("Text: want %q, got %q", "bò", res.Text)
	}
	if len(fellBackFrom) != 1 || fellBackFrom[0] != "cloud" {
		t.Errorf("fallback hook calls: want [cloud], got %v", fellBackFrom)
	}
}

func TestChain_FinalErrorUnmasked(t *testing.T) {
	t.Parallel()

	primary := &mock.Recognizer{Err: fmt.Errorf("status 500: %w", recognize.ErrUnavailable)}
	finalErr := fmt.Errorf("dial tcp: %w", recognize.ErrUnavailable)
	fallback := &mock.Recognizer{Err: finalErr}

	chain := recognize.NewChain([]recognize.Step{
		{Name: "cloud", Recognizer: primary},
		{Name: "web", Recognizer: fallback},
	})

	_, err := chain.Recognize(context.Background(), testPayload(), recognize.Request{})
	if !errors.Is(err, recognize.ErrUnavailable) {
		t.Fatalf("error does not match ErrUnavailable: %v", err)
	}
	if err.Error() != finalErr.Error() {
		t.Errorf("final error was masked: want %q, got %q", finalErr, err)
	}
}

func TestChain_NoMatchProbeFiresOnce(t *testing.T) {
	t.Parallel()

	primary := &mock.Recognizer{Err: recognize.ErrUnavailable}
	fallback := &mock.Recognizer{Err: recognize.ErrNoMatch}

	probed := 0
	chain := recognize.NewChain([]recognize.Step{
		{Name: "cloud", Recognizer: primary},
		{Name: "web", Recognizer: fallback},
	}, recognize.WithNoMatchProbe(func(_ context.Context, audio wavcodec.Payload) {
		probed++
		if len(audio.PCM) == 0 {
			t.Error("probe received empty payload")
		}
	}))

	_, err := chain.Recognize(context.Background(), testPayload(), recognize.Request{})
	if !errors.Is(err, recognize.ErrNoMatch) {
		t.Fatalf("error does not match ErrNoMatch: %v", err)
	}
	if probed != 1 {
		t.Errorf("probe fired %d times, want 1", probed)
	}
}

func TestChain_ProbeSilentOnUnavailable(t *testing.T) {
	t.Parallel()

	rec := &mock.Recognizer{Err: recognize.ErrUnavailable}

	probed := 0
	chain := recognize.NewChain([]recognize.Step{
		{Name: "web", Recognizer: rec},
	}, recognize.WithNoMatchProbe(func(context.Context, wavcodec.Payload) { probed++ }))

	_, err := chain.Recognize(context.Background(), testPayload(), recognize.Request{})
	if !errors.Is(err, recognize.ErrUnavailable) {
		t.Fatalf("error does not match ErrUnavailable: %v", err)
	}
	if probed != 0 {
		t.Errorf("probe fired %d times on a transport error, want 0", probed)
	}
}

func TestChain_SingleEntry(t *testing.T) {
	t.Parallel()

	rec := &mock.Recognizer{Result: recognize.Result{Text: "một", Confidence: 0.5}}
	chain := recognize.NewChain([]recognize.Step{{Name: "web", Recognizer: rec}})

	res, err := chain.Recognize(context.Background(), testPayload(), recognize.Request{Language: "vi-VN"})
	if err != nil {
		t.Fatalf("Recognize: unexpected error: %v", err)
	}
	if res.Text != "một" {
		t.Errorf("Text: want %q, got %q", "một", res.Text)
	}
}

func TestChain_HintsPassThrough(t *testing.T) {
	t.Parallel()

	rec := &mock.Recognizer{Result: recognize.Result{Text: "cá"}}
	chain := recognize.NewChain([]recognize.Step{{Name: "cloud", Recognizer: rec}})

	req := recognize.Request{
		Language: "vi-VN",
		Hints:    []recognize.PhraseHint{{Phrase: "cá", Boost: 20}},
	}
	if _, err := chain.Recognize(context.Background(), testPayload(), req); err != nil {
		t.Fatalf("Recognize: unexpected error: %v", err)
	}

	if len(rec.Calls) != 1 {
		t.Fatalf("calls: want 1, got %d", len(rec.Calls))
	}
	got := rec.Calls[0].Req
	if len(got.Hints) != 1 || got.Hints[0].Phrase != "cá" || got.Hints[0].Boost != 20 {
		t.Errorf("hints not passed through: %+v", got.Hints)
	}
}
