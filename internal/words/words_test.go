package words_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vplearn/tonetutor/internal/words"
)

const validWordYAML = `
words:
  - word: "cá"
    translation: "fish"
  - word: "bò"
    translation: "cow"
  - word: "mưa"
    translation: "rain"
`

func TestBuiltin(t *testing.T) {
	t.Parallel()

	c := words.Builtin()
	if c.Len() != 91 {
		t.Fatalf("builtin catalogue size: expected 91, got %d", c.Len())
	}

	first, ok := c.ByIndex(0)
	if !ok || first.Text != "ba" {
		t.Errorf("first word: expected %q, got %+v (ok=%v)", "ba", first, ok)
	}
	if !c.Contains("cá") {
		t.Error("builtin catalogue should contain \"cá\"")
	}
	if !c.Contains("xanh") {
		t.Error("builtin catalogue should contain \"xanh\"")
	}
	if c.Contains("hello") {
		t.Error("builtin catalogue should not contain \"hello\"")
	}
}

func TestContains_Normalizes(t *testing.T) {
	t.Parallel()

	c := words.Builtin()
	if !c.Contains("CÁ") {
		t.Error("Contains should be casing-insensitive")
	}
	if !c.Contains("  cá ") {
		t.Error("Contains should trim whitespace")
	}
	// Tone marks stay significant.
	if c.Contains("ca") {
		t.Error("Contains must not fold diacritics")
	}
}

func TestByIndex_OutOfRange(t *testing.T) {
	t.Parallel()

	c := words.Builtin()
	if _, ok := c.ByIndex(-1); ok {
		t.Error("ByIndex(-1): expected ok=false")
	}
	if _, ok := c.ByIndex(c.Len()); ok {
		t.Error("ByIndex(Len()): expected ok=false")
	}
}

func TestWords_ReturnsCopy(t *testing.T) {
	t.Parallel()

	c := words.New([]words.Word{{Text: "cá", Translation: "fish"}})
	got := c.Words()
	got[0].Text = "mutated"

	again := c.Words()
	if again[0].Text != "cá" {
		t.Errorf("catalogue mutated through Words() result: got %q", again[0].Text)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	t.Parallel()

	in := []words.Word{{Text: "cá", Translation: "fish"}}
	c := words.New(in)
	in[0].Text = "mutated"

	got, ok := c.ByIndex(0)
	if !ok || got.Text != "cá" {
		t.Errorf("catalogue mutated through input slice: got %+v (ok=%v)", got, ok)
	}
}

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	c, err := words.LoadFromReader(strings.NewReader(validWordYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: unexpected error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("word count: expected 3, got %d", c.Len())
	}
	w, ok := c.ByIndex(1)
	if !ok || w.Text != "bò" || w.Translation != "cow" {
		t.Errorf("second word: expected bò/cow, got %+v (ok=%v)", w, ok)
	}
}

func TestLoadFromReader_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "completely invalid YAML",
			input: ":::not valid yaml:::",
		},
		{
			name:  "unknown top-level key",
			input: "words:\n  - word: x\nunknown_key: true\n",
		},
		{
			name:  "unknown entry key",
			input: "words:\n  - word: x\n    phonemes: [k, a]\n",
		},
		{
			name:  "no words",
			input: "words: []\n",
		},
		{
			name:  "empty word text",
			input: "words:\n  - translation: fish\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := words.LoadFromReader(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("LoadFromReader: expected error for invalid input, got nil")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.yaml")
	if err := os.WriteFile(path, []byte(validWordYAML), 0o600); err != nil {
		t.Fatalf("write temp word file: %v", err)
	}

	c, err := words.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: unexpected error: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("word count: expected 3, got %d", c.Len())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := words.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadFile: expected error for missing file, got nil")
	}
}
