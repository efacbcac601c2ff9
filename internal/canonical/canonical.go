// Package canonical turns raw text into the normalized form the matchers
// search: lowercase words with punctuation, numbers and stop words removed,
// stemmed and folded to unaccented letters.
package canonical

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonicalizer produces normalized text from raw text.
type Canonicalizer interface {
	Canonicalize(ctx context.Context, raw string) (string, error)
}

// LanguageNone disables stemming.
const LanguageNone = "none"

// Pipeline is the in-process Canonicalizer.
type Pipeline struct {
	language string
}

// NewPipeline returns a pipeline stemming with the given Snowball language
// ("english", "russian", ... or "none"). Cyrillic words are always stemmed
// as Russian.
func NewPipeline(language string) (*Pipeline, error) {
	if language == "" {
		language = "english"
	}
	if language != LanguageNone {
		if _, err := snowball.Stem("test", language, true); err != nil {
			return nil, fmt.Errorf("unsupported stem language %q: %w", language, err)
		}
	}
	return &Pipeline{language: language}, nil
}

func (p *Pipeline) Canonicalize(ctx context.Context, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	folded, err := foldDiacritics(raw)
	if err != nil {
		return "", fmt.Errorf("failed to fold text: %w", err)
	}

	words := strings.Fields(strings.ToLower(folded))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if isStopWord(w) {
			continue
		}
		w = stripPunctuation(w)
		if w == "" || hasDigit(w) || isStopWord(w) {
			continue
		}
		out = append(out, p.stem(w))
	}
	return strings.Join(out, " "), nil
}

func (p *Pipeline) stem(word string) string {
	if p.language == LanguageNone {
		return word
	}
	language := p.language
	if isCyrillic(word) {
		language = "russian"
	}
	stemmed, err := snowball.Stem(word, language, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// IsStable reports whether canonicalizing text twice gives the same result
// as doing it once.
func IsStable(ctx context.Context, c Canonicalizer, text string) (bool, error) {
	once, err := c.Canonicalize(ctx, text)
	if err != nil {
		return false, err
	}
	twice, err := c.Canonicalize(ctx, once)
	if err != nil {
		return false, err
	}
	return once == twice, nil
}

// foldDiacritics strips combining marks, so "é" becomes "e". Letters without
// a decomposition (Cyrillic, CJK) pass through unchanged.
func foldDiacritics(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	return out, err
}

func stripPunctuation(w string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, w)
}

func hasDigit(w string) bool {
	return strings.IndexFunc(w, unicode.IsDigit) >= 0
}

func isCyrillic(w string) bool {
	for _, r := range w {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
