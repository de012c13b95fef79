// Package googlerest implements recognition against the Google Cloud
// Speech-to-Text v1 REST endpoint, authenticated with an API key.
//
// This is the preferred recognizer when an API key is configured: it needs no
// service-account credentials and supports phrase hints, which materially
// improve accuracy for short, acoustically ambiguous Vietnamese syllables.
//
// The request declares linear-PCM encoding at a fixed sample rate (16 kHz by
// default) regardless of the payload's actual rate; the client is trusted to
// have recorded at the declared rate. Enhanced models are requested,
// punctuation is disabled, and only the single best alternative is returned.
//
// Typical usage:
//
//	p, err := googlerest.New(apiKey,
//	    googlerest.WithTimeout(15*time.Second),
//	)
//	res, err := p.Recognize(ctx, payload, recognize.Request{
//	    Language: "vi-VN",
//	    Hints:    []recognize.PhraseHint{{Phrase: "cá", Boost: 20}},
//	})
package googlerest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// Compile-time interface assertion.
var _ recognize.Recognizer = (*Provider)(nil)

const (
	defaultBaseURL    = "https://speech.googleapis.com"
	defaultTimeout    = 15 * time.Second
	defaultSampleRate = 16000
	recognizePath     = "/v1/speech:recognize"

	// errBodyLimit caps how much of an error response body is read for logs.
	errBodyLimit = 2048
)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithBaseURL overrides the API base URL. Used in tests to point the
// provider at a local server.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 15 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// WithHTTPClient replaces the HTTP client entirely. The caller owns the
// client's timeout configuration.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithSampleRate overrides the sample rate declared in the request config.
// Defaults to 16000 Hz. This does not resample the payload.
func WithSampleRate(hz int) Option {
	return func(p *Provider) { p.sampleRate = hz }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// Provider calls the Speech-to-Text v1 REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	sampleRate int
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Provider. apiKey must not be empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("googlerest: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		sampleRate: defaultSampleRate,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ---- wire types ----

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding                   string          `json:"encoding"`
	SampleRateHertz            int             `json:"sampleRateHertz"`
	LanguageCode               string          `json:"languageCode"`
	SpeechContexts             []speechContext `json:"speechContexts,omitempty"`
	UseEnhanced                bool            `json:"useEnhanced"`
	EnableAutomaticPunctuation bool            `json:"enableAutomaticPunctuation"`
	MaxAlternatives            int             `json:"maxAlternatives"`
	ProfanityFilter            bool            `json:"profanityFilter"`
}

type speechContext struct {
	Phrases []string `json:"phrases"`
	Boost   float64  `json:"boost,omitempty"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []recognitionResult `json:"results"`
}

type recognitionResult struct {
	Alternatives []recognitionAlternative `json:"alternatives"`
}

type recognitionAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// buildRequest assembles the wire request for one payload. Split out for
// testability.
func (p *Provider) buildRequest(audio wavcodec.Payload, req recognize.Request) recognizeRequest {
	cfg := recognitionConfig{
		Encoding:                   "LINEAR16",
		SampleRateHertz:            p.sampleRate,
		LanguageCode:               req.Language,
		UseEnhanced:                true,
		EnableAutomaticPunctuation: false,
		MaxAlternatives:            1,
		ProfanityFilter:            false,
	}
	for _, h := range req.Hints {
		if h.Phrase == "" {
			continue
		}
		cfg.SpeechContexts = append(cfg.SpeechContexts, speechContext{
			Phrases: []string{h.Phrase},
			Boost:   h.Boost,
		})
	}
	return recognizeRequest{
		Config: cfg,
		Audio:  recognitionAudio{Content: base64.StdEncoding.EncodeToString(audio.PCM)},
	}
}

// Recognize implements [recognize.Recognizer].
func (p *Provider) Recognize(ctx context.Context, audio wavcodec.Payload, req recognize.Request) (recognize.Result, error) {
	body, err := json.Marshal(p.buildRequest(audio, req))
	if err != nil {
		return recognize.Result{}, fmt.Errorf("googlerest: marshal request: %w", err)
	}

	url := p.baseURL + recognizePath + "?key=" + p.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return recognize.Result{}, fmt.Errorf("googlerest: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts, cancellations, and connection errors are all
		// transport-level failures.
		return recognize.Result{}, fmt.Errorf("googlerest: request: %v: %w", err, recognize.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		p.logger.Warn("speech API returned non-OK status",
			"status", resp.StatusCode,
			"body", string(excerpt),
		)
		return recognize.Result{}, fmt.Errorf("googlerest: status %d: %w", resp.StatusCode, recognize.ErrUnavailable)
	}

	var rr recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return recognize.Result{}, fmt.Errorf("googlerest: decode response: %v: %w", err, recognize.ErrUnavailable)
	}

	if len(rr.Results) == 0 || len(rr.Results[0].Alternatives) == 0 {
		return recognize.Result{}, fmt.Errorf("googlerest: empty result set: %w", recognize.ErrNoMatch)
	}

	alt := rr.Results[0].Alternatives[0]
	return recognize.Result{Text: alt.Transcript, Confidence: alt.Confidence}, nil
}
