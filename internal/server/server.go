// Package server implements the HTTP API of the pronunciation trainer.
//
// Three routes make up the API surface:
//
//   - POST /api/check-pronunciation judges one recorded attempt.
//   - GET /api/words lists the practice vocabulary.
//   - GET /api/health reports liveness (mounted by the health package).
//
// Every response body is JSON. Failure bodies share one envelope: a false
// success flag, a machine-oriented error string, and a learner-facing
// message. A judged attempt is a 200 even when the pronunciation was wrong;
// 400 means the attempt never reached a judgement.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vplearn/tonetutor/internal/judge"
	"github.com/vplearn/tonetutor/internal/observe"
	"github.com/vplearn/tonetutor/internal/words"
)

// Server holds the handler dependencies. It is read-only after construction
// and safe for concurrent use.
type Server struct {
	judge     *judge.Judge
	catalogue *words.Catalogue
	metrics   *observe.Metrics
}

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a Server around a judge and a word catalogue.
func New(j *judge.Judge, c *words.Catalogue, opts ...Option) *Server {
	s := &Server{judge: j, catalogue: c}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Register mounts the API routes on mux. The catch-all route turns unknown
// paths into the JSON 404 envelope instead of the mux default.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/check-pronunciation", s.handleCheck)
	mux.HandleFunc("GET /api/words", s.handleWords)
	mux.HandleFunc("/", s.handleNotFound)
}

// ---- wire types ----

// checkRequest is the POST /api/check-pronunciation body.
type checkRequest struct {
	// AudioData is a base64-encoded RIFF/WAVE recording.
	AudioData string `json:"audio_data"`

	// ExpectedWord is the word the learner was asked to say.
	ExpectedWord string `json:"expected_word"`

	// Language is accepted for API compatibility but ignored; the recognition
	// language is fixed server-side.
	Language string `json:"language"`
}

// checkSuccess is the body of a judged attempt, correct or not.
type checkSuccess struct {
	Success    bool    `json:"success"`
	Correct    bool    `json:"correct"`
	Recognized string  `json:"recognized"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// apiError is the shared failure envelope.
type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// wordsResponse is the GET /api/words body.
type wordsResponse struct {
	Words []words.Word `json:"words"`
	Total int          `json:"total"`
}

// ---- handlers ----

// handleCheck judges one pronunciation attempt.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observe.Logger(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("check-pronunciation handler panicked", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, apiError{
				Error:   fmt.Sprint(rec),
				Message: "An error occurred processing your request",
			})
		}
	}()

	s.metrics.ActiveChecks.Add(ctx, 1)
	defer s.metrics.ActiveChecks.Add(ctx, -1)

	var req *checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		writeJSON(w, http.StatusBadRequest, apiError{
			Error:   "No data provided",
			Message: "Invalid request",
		})
		return
	}

	logger.Info("checking pronunciation", "word", req.ExpectedWord)
	if req.Language != "" {
		logger.Debug("client-specified language is ignored", "language", req.Language)
	}

	start := time.Now()
	res := s.judge.Check(ctx, req.AudioData, req.ExpectedWord)

	outcome := outcomeFor(res)
	s.metrics.RecordCheck(ctx, outcome, time.Since(start).Seconds())
	if res.Kind == judge.KindInvalidAudio {
		s.metrics.RecordDecodeFailure(ctx)
	}

	if !res.Success {
		writeJSON(w, http.StatusBadRequest, apiError{
			Error:   res.Error,
			Message: res.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, checkSuccess{
		Success:    true,
		Correct:    res.Correct,
		Recognized: res.Recognized,
		Confidence: res.Confidence,
		Message:    res.Message,
	})
}

// handleWords lists the practice vocabulary with translations.
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wordsResponse{
		Words: s.catalogue.Words(),
		Total: s.catalogue.Len(),
	})
}

// handleNotFound is the catch-all for unregistered paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apiError{
		Error:   "Endpoint not found",
		Message: "The requested endpoint does not exist",
	})
}

// outcomeFor maps a judge result to the metric outcome attribute value.
func outcomeFor(res judge.Result) string {
	switch {
	case !res.Success:
		return string(res.Kind)
	case res.Correct:
		return "correct"
	default:
		return "incorrect"
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "err", err)
	}
}
