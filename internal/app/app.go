// Package app wires the pronunciation trainer's subsystems into a running
// service.
//
// The App struct owns the full lifecycle: New selects the recognition
// backend, loads the word catalogue, and assembles the HTTP server; Run
// serves until the context is cancelled; Shutdown tears down what New
// created.
//
// For testing, inject doubles via functional options (WithRecognizer,
// WithCatalogue, WithMetrics). When an option is not provided, New creates
// real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vplearn/tonetutor/internal/config"
	"github.com/vplearn/tonetutor/internal/diagnose"
	"github.com/vplearn/tonetutor/internal/health"
	"github.com/vplearn/tonetutor/internal/judge"
	"github.com/vplearn/tonetutor/internal/observe"
	"github.com/vplearn/tonetutor/internal/server"
	"github.com/vplearn/tonetutor/internal/words"
	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/recognize/googlecloud"
	"github.com/vplearn/tonetutor/pkg/recognize/googlerest"
	"github.com/vplearn/tonetutor/pkg/recognize/webspeech"
)

// serviceLabel is the display name reported by the liveness endpoint.
const serviceLabel = "Vietnamese Pronunciation Trainer"

// readHeaderTimeout bounds how long a client may take to send request
// headers before the connection is dropped.
const readHeaderTimeout = 10 * time.Second

// App owns all subsystem lifetimes.
type App struct {
	cfg *config.Config

	metrics    *observe.Metrics
	catalogue  *words.Catalogue
	recognizer recognize.Recognizer
	judge      *judge.Judge
	srv        *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithRecognizer injects a recognizer instead of building the fallback chain
// from config.
func WithRecognizer(r recognize.Recognizer) Option {
	return func(a *App) { a.recognizer = r }
}

// WithCatalogue injects a word catalogue instead of loading one from config.
func WithCatalogue(c *words.Catalogue) Option {
	return func(a *App) { a.catalogue = c }
}

// WithMetrics injects a metrics instance instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. Initialisation is
// synchronous: recognizer selection happens here, once, so that every request
// sees the same chain.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Word catalogue ────────────────────────────────────────────────
	if err := a.initWords(); err != nil {
		return nil, fmt.Errorf("app: init words: %w", err)
	}

	// ── 2. Recognition chain ─────────────────────────────────────────────
	if err := a.initRecognizer(ctx); err != nil {
		return nil, fmt.Errorf("app: init recognizer: %w", err)
	}

	// ── 3. Judge ─────────────────────────────────────────────────────────
	a.initJudge()

	// ── 4. HTTP server ───────────────────────────────────────────────────
	a.initServer()

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initWords loads the word catalogue from the configured file, or falls back
// to the built-in vocabulary.
func (a *App) initWords() error {
	if a.catalogue != nil {
		return nil // injected
	}

	if path := a.cfg.Words.File; path != "" {
		c, err := words.LoadFile(path)
		if err != nil {
			return err
		}
		a.catalogue = c
		slog.Info("word catalogue loaded", "path", path, "words", c.Len())
		return nil
	}

	a.catalogue = words.Builtin()
	slog.Info("using built-in word catalogue", "words", a.catalogue.Len())
	return nil
}

// initRecognizer selects the recognition backend once at startup and builds
// the fallback chain. An API key selects the REST variant; otherwise the SDK
// variant is attempted; the web speech endpoint is always the last entry so
// that recognition works without any cloud credentials at all.
func (a *App) initRecognizer(ctx context.Context) error {
	if a.recognizer != nil {
		return nil // injected
	}

	rc := a.cfg.Recognition
	timeout := time.Duration(rc.RequestTimeoutMS) * time.Millisecond

	var steps []recognize.Step

	switch {
	case rc.APIKey != "":
		p, err := googlerest.New(rc.APIKey,
			googlerest.WithTimeout(timeout),
			googlerest.WithSampleRate(rc.SampleRate),
		)
		if err != nil {
			return err
		}
		steps = append(steps, recognize.Step{
			Name:       "googlerest",
			Recognizer: observe.InstrumentRecognizer("googlerest", p, a.metrics),
		})
		slog.Info("cloud recognition enabled", "variant", "rest", "sample_rate", rc.SampleRate)

	default:
		cloudOpts := []googlecloud.Option{
			googlecloud.WithTimeout(timeout),
			googlecloud.WithSampleRate(rc.SampleRate),
		}
		if rc.CredentialsFile != "" {
			cloudOpts = append(cloudOpts, googlecloud.WithCredentialsFile(rc.CredentialsFile))
		}
		p, err := googlecloud.New(ctx, cloudOpts...)
		if err != nil {
			slog.Warn("cloud SDK recognizer unavailable, relying on the web speech endpoint", "err", err)
		} else {
			steps = append(steps, recognize.Step{
				Name:       "googlecloud",
				Recognizer: observe.InstrumentRecognizer("googlecloud", p, a.metrics),
			})
			a.closers = append(a.closers, p.Close)
			slog.Info("cloud recognition enabled", "variant", "sdk", "sample_rate", rc.SampleRate)
		}
	}

	ws := observe.InstrumentRecognizer("webspeech", webspeech.New(webspeech.WithTimeout(timeout)), a.metrics)
	steps = append(steps, recognize.Step{Name: "webspeech", Recognizer: ws})

	chainOpts := []recognize.ChainOption{
		recognize.WithFallbackFunc(func(ctx context.Context, from string) {
			a.metrics.RecordFallback(ctx, from)
		}),
	}
	if a.cfg.Diagnostics.Enabled {
		rp := diagnose.NewReprobe(ws, diagnose.WithReprobeLanguage(a.cfg.Diagnostics.Language))
		chainOpts = append(chainOpts, recognize.WithNoMatchProbe(rp.Probe))
	}

	a.recognizer = recognize.NewChain(steps, chainOpts...)
	return nil
}

// initJudge builds the judge on top of the recognition chain.
func (a *App) initJudge() {
	rc := a.cfg.Recognition
	opts := []judge.Option{
		judge.WithLanguage(rc.Language),
		judge.WithHintBoost(rc.HintBoost),
	}
	if rc.MaxRecordingSeconds > 0 {
		opts = append(opts, judge.WithMaxDuration(time.Duration(rc.MaxRecordingSeconds)*time.Second))
	}
	if a.cfg.Diagnostics.Enabled {
		opts = append(opts, judge.WithNearMiss(diagnose.NewNearMiss()))
	}
	a.judge = judge.New(a.recognizer, opts...)
}

// initServer assembles the route table and the middleware stack.
func (a *App) initServer() {
	mux := http.NewServeMux()

	server.New(a.judge, a.catalogue, server.WithMetrics(a.metrics)).Register(mux)

	health.New(serviceLabel,
		health.Checker{Name: "words", Check: a.checkWords},
		health.Checker{Name: "recognizer", Check: a.checkRecognizer},
	).Register(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := server.Chain(mux,
		observe.Middleware(a.metrics),
		server.CORS(a.cfg.Server.CORSOrigins),
		server.Recover(slog.Default()),
	)

	a.srv = &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// ─── Readiness checks ────────────────────────────────────────────────────────

func (a *App) checkWords(context.Context) error {
	if a.catalogue.Len() == 0 {
		return errors.New("word catalogue is empty")
	}
	return nil
}

func (a *App) checkRecognizer(context.Context) error {
	if a.recognizer == nil {
		return errors.New("no recognizer configured")
	}
	return nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// shutdownGrace is how long in-flight requests get to finish once the run
// context is cancelled.
const shutdownGrace = 10 * time.Second

// Handler returns the fully assembled HTTP handler. Exposed for tests that
// drive the API without binding a listener.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
// A nil return means a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := a.srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("app: drain: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown releases resources created by New, in order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}
	})
	return shutdownErr
}
