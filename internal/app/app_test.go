package app_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vplearn/tonetutor/internal/app"
	"github.com/vplearn/tonetutor/internal/config"
	"github.com/vplearn/tonetutor/internal/observe"
	"github.com/vplearn/tonetutor/internal/words"
	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/recognize/mock"
)

// testConfig returns the default config bound to an ephemeral port.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	return cfg
}

// newTestApp wires an App with an injected recognizer so that construction
// never touches the network. A real tracer provider is registered so the
// middleware produces correlation IDs.
func newTestApp(t *testing.T, rec recognize.Recognizer) *app.App {
	t.Helper()

	tp := sdktrace.NewTracerProvider()
	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		_ = tp.Shutdown(context.Background())
	})

	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	a, err := app.New(context.Background(), testConfig(),
		app.WithRecognizer(rec),
		app.WithCatalogue(words.Builtin()),
		app.WithMetrics(m),
	)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

// wavBase64 returns a small valid RIFF/WAVE container, base64-encoded:
// mono, 16 kHz, 16-bit, eight samples.
func wavBase64(t *testing.T) string {
	t.Helper()

	samples := []int16{0, 1000, -1000, 2000, -2000, 3000, -3000, 0}
	var data bytes.Buffer
	for _, s := range samples {
		if err := binary.Write(&data, binary.LittleEndian, s); err != nil {
			t.Fatalf("write sample: %v", err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(16000))
	binary.Write(&buf, binary.LittleEndian, uint32(16000*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNew_ServesHealthWithServiceName(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("status = %q, want healthy", body.Status)
	}
	if body.Service != "Vietnamese Pronunciation Trainer" {
		t.Errorf("service = %q, want the display name", body.Service)
	}
}

func TestNew_ServesWordsAndMetrics(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{})

	req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/api/words status = %d, want 200", rr.Code)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := words.Builtin().Len(); body.Total != want {
		t.Errorf("total = %d, want %d", body.Total, want)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr = httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("/metrics returned an empty exposition")
	}
}

func TestNew_CheckEndToEnd(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{Result: recognize.Result{Text: "cá", Confidence: 0.88}})

	payload, _ := json.Marshal(map[string]string{
		"audio_data":    wavBase64(t),
		"expected_word": "cá",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/check-pronunciation", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Success    bool    `json:"success"`
		Correct    bool    `json:"correct"`
		Recognized string  `json:"recognized"`
		Confidence float64 `json:"confidence"`
		Message    string  `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || !body.Correct || body.Recognized != "cá" || body.Message != "Correct!" {
		t.Errorf("response = %+v", body)
	}

	// The middleware stack should be active on this route.
	if rr.Header().Get("X-Correlation-ID") == "" {
		t.Error("missing X-Correlation-ID header")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestNew_UnknownRouteIsJSON404(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{})

	req := httptest.NewRequest(http.MethodGet, "/definitely/not/here", nil)
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Endpoint not found") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestNew_ReadyzPassesWithLoadedCatalogue(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"words":"ok"`) {
		t.Errorf("readiness body = %s", rr.Body.String())
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	a := newTestApp(t, &mock.Recognizer{})

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
