// Package shingle splits canonical text into overlapping fixed-size token
// windows.
package shingle

import "strings"

// DefaultSize is the window size used for candidate texts.
const DefaultSize = 3

// Generate returns every run of size consecutive whitespace separated tokens
// of text, joined by a single space. Texts with fewer than size tokens, and
// sizes below one, produce no shingles.
func Generate(text string, size int) []string {
	return FromTokens(strings.Fields(text), size)
}

// FromTokens is Generate for an already tokenized text.
func FromTokens(tokens []string, size int) []string {
	if size < 1 || len(tokens) < size {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-size+1)
	for i := 0; i+size <= len(tokens); i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+size], " "))
	}
	return shingles
}
