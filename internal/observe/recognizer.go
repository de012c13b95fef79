package observe

import (
	"context"
	"errors"
	"time"

	"github.com/vplearn/tonetutor/pkg/recognize"
	"github.com/vplearn/tonetutor/pkg/wavcodec"
)

// instrumentedRecognizer wraps a [recognize.Recognizer] and records every call
// to [Metrics.RecognitionDuration].
type instrumentedRecognizer struct {
	name string
	rec  recognize.Recognizer
	m    *Metrics
}

var _ recognize.Recognizer = (*instrumentedRecognizer)(nil)

// InstrumentRecognizer wraps rec so that every Recognize call records its
// duration and outcome status under the given recognizer name. The wrapped
// recognizer's results and errors pass through unchanged.
func InstrumentRecognizer(name string, rec recognize.Recognizer, m *Metrics) recognize.Recognizer {
	return &instrumentedRecognizer{name: name, rec: rec, m: m}
}

func (ir *instrumentedRecognizer) Recognize(ctx context.Context, audio wavcodec.Payload, req recognize.Request) (recognize.Result, error) {
	start := time.Now()
	res, err := ir.rec.Recognize(ctx, audio, req)
	ir.m.RecordRecognition(ctx, ir.name, statusFor(err), time.Since(start).Seconds())
	return res, err
}

// statusFor maps a recognition error to the metric status attribute value.
func statusFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, recognize.ErrNoMatch):
		return "no_match"
	case errors.Is(err, recognize.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
