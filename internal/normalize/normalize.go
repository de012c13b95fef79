// Package normalize prepares transcripts for comparison. Recognition output
// and expected words pass through the same normalization so that equality
// checks are not defeated by casing, stray whitespace, or the stutter
// artifacts continuous listening produces ("ba ba ba" for a single "ba").
package normalize

import "strings"

// Transcript lowercases and trims s. When the result consists of several
// whitespace-separated tokens that are all identical, it collapses to the
// single repeated token. Mixed tokens are left untouched: a multi-word
// transcript can never equal a single expected word, and that mismatch
// should stay visible to the caller.
//
// Diacritics are preserved as-is. Vietnamese tone marks are meaning-bearing,
// so "ca", "cá" and "cà" must remain distinct after normalization.
func Transcript(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return s
	}
	for _, tok := range tokens[1:] {
		if tok != tokens[0] {
			return s
		}
	}
	return tokens[0]
}
