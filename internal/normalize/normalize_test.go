package normalize_test

import (
	"testing"

	"github.com/vplearn/tonetutor/internal/normalize"
)

func TestTranscript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "CÁ", want: "cá"},
		{name: "trims", in: "  cá \t", want: "cá"},
		{name: "lowercases and trims", in: "Cá ", want: "cá"},
		{name: "collapses repeated token", in: "ba ba ba", want: "ba"},
		{name: "collapses repeated pair", in: "bò bò", want: "bò"},
		{name: "repeated with extra spacing", in: "ba  ba\tba", want: "ba"},
		{name: "mixed tokens untouched", in: "ba bo", want: "ba bo"},
		{name: "partial repeat untouched", in: "ba ba bo", want: "ba ba bo"},
		{name: "single word unchanged", in: "mưa", want: "mưa"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
		{name: "tones stay distinct", in: "cà", want: "cà"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := normalize.Transcript(tt.in); got != tt.want {
				t.Errorf("Transcript(%q): want %q, got %q", tt.in, tt.want, got)
			}
		})
	}
}

func TestTranscript_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Cá ", "ba ba ba", "ba bo", "  MƯA  "}
	for _, in := range inputs {
		once := normalize.Transcript(in)
		twice := normalize.Transcript(once)
		if once != twice {
			t.Errorf("Transcript not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
