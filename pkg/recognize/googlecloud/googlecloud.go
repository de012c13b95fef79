// Package googlecloud implements recognition through the Google Cloud
// Speech-to-Text v1 SDK, authenticated with ambient credentials (Application
// Default Credentials or an explicit service-account file).
//
// It is selected when no API key is configured but SDK credentials are
// available. Like the REST variant it supports phrase hints and declares
// linear-PCM at a fixed sample rate; the two differ only in transport and
// authentication.
package googlecloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// Compile-time interface assertion.
var _ recognize.Recognizer = (*Provider)(nil)

const (
	defaultSampleRate = 16000
	defaultTimeout    = 15 * time.Second
)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithCredentialsFile points the client at a service-account JSON file
// instead of Application Default Credentials.
func WithCredentialsFile(path string) Option {
	return func(p *Provider) { p.credentialsFile = path }
}

// WithTimeout bounds each Recognize call. Defaults to 15 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
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

// Provider calls Speech-to-Text through the Cloud SDK client.
type Provider struct {
	client          *speech.Client
	credentialsFile string
	sampleRate      int
	timeout         time.Duration
	logger          *slog.Logger
}

// New creates a Provider and dials the Speech API. Construction fails when
// no usable credentials can be found, which callers treat as "variant not
// available" rather than a fatal error.
func New(ctx context.Context, opts ...Option) (*Provider, error) {
	p := &Provider{
		sampleRate: defaultSampleRate,
		timeout:    defaultTimeout,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}

	var clientOpts []option.ClientOption
	if p.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(p.credentialsFile))
	}

	client, err := speech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("googlecloud: create client: %w", err)
	}
	p.client = client
	return p, nil
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// buildConfig assembles the recognition config for one request. Split out
// for testability.
func (p *Provider) buildConfig(req recognize.Request) *speechpb.RecognitionConfig {
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            int32(p.sampleRate),
		LanguageCode:               req.Language,
		MaxAlternatives:            1,
		ProfanityFilter:            false,
		EnableAutomaticPunctuation: false,
		UseEnhanced:                true,
	}
	for _, h := range req.Hints {
		if h.Phrase == "" {
			continue
		}
		cfg.SpeechContexts = append(cfg.SpeechContexts, &speechpb.SpeechContext{
			Phrases: []string{h.Phrase},
			Boost:   float32(h.Boost),
		})
	}
	return cfg
}

// mapResults converts an SDK response into a [recognize.Result]. An empty
// result set maps to [recognize.ErrNoMatch].
func mapResults(resp *speechpb.RecognizeResponse) (recognize.Result, error) {
	if resp == nil || len(resp.Results) == 0 || len(resp.Results[0].Alternatives) == 0 {
		return recognize.Result{}, fmt.Errorf("googlecloud: empty result set: %w", recognize.ErrNoMatch)
	}
	alt := resp.Results[0].Alternatives[0]
	return recognize.Result{
		Text:       alt.Transcript,
		Confidence: float64(alt.Confidence),
	}, nil
}

// Recognize implements [recognize.Recognizer].
func (p *Provider) Recognize(ctx context.Context, audio wavcodec.Payload, req recognize.Request) (recognize.Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: p.buildConfig(req),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.PCM},
		},
	})
	if err != nil {
		return recognize.Result{}, fmt.Errorf("googlecloud: recognize: %v: %w", err, recognize.ErrUnavailable)
	}
	return mapResults(resp)
}
