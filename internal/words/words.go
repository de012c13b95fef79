// Package words holds the practice word catalogue. The catalogue is built
// once at process start, either from the built-in list or from a YAML file,
// and is shared read-only across requests.
package words

import (
	"github.com/vplearn/tonetutor/internal/normalize"
)

// Word pairs a Vietnamese practice word with its English translation.
type Word struct {
	Text        string `json:"word" yaml:"word"`
	Translation string `json:"translation" yaml:"translation"`
}

// Catalogue is an immutable, ordered collection of practice words.
type Catalogue struct {
	words []Word
	index map[string]int
}

// New builds a Catalogue from ws, preserving order. Lookup keys are
// normalized so that [Catalogue.Contains] is casing-insensitive.
func New(ws []Word) *Catalogue {
	c := &Catalogue{
		words: make([]Word, len(ws)),
		index: make(map[string]int, len(ws)),
	}
	copy(c.words, ws)
	for i, w := range c.words {
		c.index[normalize.Transcript(w.Text)] = i
	}
	return c
}

// Words returns a copy of the catalogue in its original order.
func (c *Catalogue) Words() []Word {
	out := make([]Word, len(c.words))
	copy(out, c.words)
	return out
}

// Len returns the number of words in the catalogue.
func (c *Catalogue) Len() int {
	return len(c.words)
}

// Contains reports whether text, after normalization, is a catalogue word.
func (c *Catalogue) Contains(text string) bool {
	_, ok := c.index[normalize.Transcript(text)]
	return ok
}

// ByIndex returns the i-th word. ok is false when i is out of range.
func (c *Catalogue) ByIndex(i int) (Word, bool) {
	if i < 0 || i >= len(c.words) {
		return Word{}, false
	}
	return c.words[i], true
}

// Builtin returns the default catalogue of short Vietnamese words chosen for
// pronunciation practice. Two-letter words first, then three-letter words.
func Builtin() *Catalogue {
	return New(builtinWords)
}

var builtinWords = []Word{
	{Text: "ba", Translation: "three / father"},
	{Text: "bà", Translation: "grandmother"},
	{Text: "bị", Translation: "to suffer / passive marker"},
	{Text: "bò", Translation: "cow"},
	{Text: "bờ", Translation: "shore / edge"},
	{Text: "cá", Translation: "fish"},
	{Text: "cò", Translation: "heron"},
	{Text: "có", Translation: "to have / yes"},
	{Text: "cô", Translation: "aunt / miss"},
	{Text: "da", Translation: "skin"},
	{Text: "dê", Translation: "goat"},
	{Text: "đá", Translation: "stone / ice"},
	{Text: "đi", Translation: "to go"},
	{Text: "đó", Translation: "that"},
	{Text: "ếch", Translation: "frog"},
	{Text: "gà", Translation: "chicken"},
	{Text: "gấu", Translation: "bear"},
	{Text: "hà", Translation: "river"},
	{Text: "hó", Translation: "to shout"},
	{Text: "kê", Translation: "to prop up"},
	{Text: "kỳ", Translation: "strange / term"},
	{Text: "lá", Translation: "leaf"},
	{Text: "lò", Translation: "oven / stove"},
	{Text: "lý", Translation: "reason"},
	{Text: "má", Translation: "mother / cheek"},
	{Text: "mà", Translation: "but / that"},
	{Text: "mẹ", Translation: "mother"},
	{Text: "mù", Translation: "blind"},
	{Text: "na", Translation: "custard apple"},
	{Text: "nó", Translation: "he / she / it"},
	{Text: "ô", Translation: "square / umbrella"},
	{Text: "ơi", Translation: "hey / oh"},
	{Text: "rể", Translation: "son-in-law"},
	{Text: "rồi", Translation: "already / then"},
	{Text: "sao", Translation: "star / why"},
	{Text: "tai", Translation: "ear"},
	{Text: "tay", Translation: "hand / arm"},
	{Text: "thì", Translation: "then / so"},
	{Text: "tôi", Translation: "I / me"},
	{Text: "tô", Translation: "bowl"},
	{Text: "tủ", Translation: "cabinet"},
	{Text: "và", Translation: "and"},
	{Text: "vì", Translation: "because"},
	{Text: "voi", Translation: "elephant"},
	{Text: "vở", Translation: "notebook"},
	{Text: "xem", Translation: "to watch / see"},
	{Text: "xin", Translation: "please / to ask"},
	{Text: "xuê", Translation: "slanted"},
	{Text: "ăn", Translation: "to eat"},
	{Text: "bạn", Translation: "friend"},
	{Text: "bảo", Translation: "to tell / to say"},
	{Text: "bây", Translation: "now / this"},
	{Text: "béo", Translation: "fat"},
	{Text: "biết", Translation: "to know"},
	{Text: "bớt", Translation: "to reduce"},
	{Text: "buồn", Translation: "sad"},
	{Text: "cao", Translation: "tall / high"},
	{Text: "chó", Translation: "dog"},
	{Text: "chị", Translation: "older sister"},
	{Text: "đau", Translation: "pain / to hurt"},
	{Text: "đây", Translation: "here"},
	{Text: "đêm", Translation: "night"},
	{Text: "đến", Translation: "to arrive / to come"},
	{Text: "đói", Translation: "hungry"},
	{Text: "gần", Translation: "near"},
	{Text: "giá", Translation: "price"},
	{Text: "hay", Translation: "good / or"},
	{Text: "học", Translation: "to study / to learn"},
	{Text: "hỏi", Translation: "to ask"},
	{Text: "khó", Translation: "difficult"},
	{Text: "làm", Translation: "to do / to make"},
	{Text: "lớn", Translation: "big / large"},
	{Text: "mới", Translation: "new"},
	{Text: "một", Translation: "one"},
	{Text: "nào", Translation: "which / any"},
	{Text: "này", Translation: "this"},
	{Text: "nhà", Translation: "house / home"},
	{Text: "nhỏ", Translation: "small"},
	{Text: "như", Translation: "like / as"},
	{Text: "nói", Translation: "to speak / to say"},
	{Text: "phải", Translation: "must / right"},
	{Text: "sớm", Translation: "early"},
	{Text: "tên", Translation: "name"},
	{Text: "tốt", Translation: "good"},
	{Text: "trà", Translation: "tea"},
	{Text: "trái", Translation: "fruit / left"},
	{Text: "trẻ", Translation: "young"},
	{Text: "văn", Translation: "literature"},
	{Text: "vui", Translation: "happy / fun"},
	{Text: "xanh", Translation: "green / blue"},
	{Text: "xấu", Translation: "ugly / bad"},
]
