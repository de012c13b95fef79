package words

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// WordFile is the top-level structure of a word list YAML file.
//
// Example:
//
//	words:
//	  - word: "cá"
//	    translation: "fish"
//	  - word: "bò"
//	    translation: "cow"
type WordFile struct {
	Words []Word `yaml:"words"`
}

// LoadFile reads and parses a word list YAML file from disk.
// Returns a descriptive error if the file cannot be opened or parsed.
func LoadFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open word file %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("words: parse word file %q: %w", path, err)
	}
	return c, nil
}

// LoadFromReader parses word list YAML from an [io.Reader].
// The reader is consumed entirely; the caller is responsible for closing it.
func LoadFromReader(r io.Reader) (*Catalogue, error) {
	var wf WordFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&wf); err != nil {
		return nil, fmt.Errorf("words: decode word yaml: %w", err)
	}

	if len(wf.Words) == 0 {
		return nil, fmt.Errorf("words: word file declares no words")
	}
	for i, w := range wf.Words {
		if w.Text == "" {
			return nil, fmt.Errorf("words: entry %d has an empty word", i)
		}
	}
	return New(wf.Words), nil
}
