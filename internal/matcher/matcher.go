// Package matcher implements exact single-pattern substring search.
//
// Every matcher precomputes its tables from the pattern once and can then be
// reused against any number of texts. A Matcher is safe for concurrent use
// because Search never writes to the matcher.
package matcher

import (
	"errors"
	"fmt"
)

// Kind selects a search strategy.
type Kind string

const (
	KindKMP                  Kind = "kmp"
	KindRabinKarp            Kind = "rabin-karp"
	KindBoyerMooreBadChar    Kind = "bm-bad-char"
	KindBoyerMooreGoodSuffix Kind = "bm-good-suffix"
)

// DefaultAlphabetSize is the size of the Boyer-Moore bad-character table.
const DefaultAlphabetSize = 128

var (
	ErrInvalidPattern = errors.New("pattern must not be empty")
	ErrUnknownKind    = errors.New("unknown matcher kind")
)

// Matcher finds every occurrence of its pattern in a text. Offsets are
// zero-based byte offsets in ascending order and may overlap.
type Matcher interface {
	Search(text string) []int
	Kind() Kind
	Pattern() string
}

type options struct {
	alphabetSize int
}

// Option configures a matcher built by New.
type Option func(*options)

// WithAlphabetSize sets the bad-character table size for Boyer-Moore matchers.
// Bytes are folded into the table with byte % size. Other kinds ignore it.
func WithAlphabetSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.alphabetSize = size
		}
	}
}

// New builds a matcher of the given kind for pattern.
func New(kind Kind, pattern string, opts ...Option) (Matcher, error) {
	if pattern == "" {
		return nil, ErrInvalidPattern
	}

	o := options{alphabetSize: DefaultAlphabetSize}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case KindKMP:
		return NewKnuthMorrisPratt(pattern), nil
	case KindRabinKarp:
		return NewRabinKarp(pattern), nil
	case KindBoyerMooreBadChar:
		return NewBoyerMoore(pattern, BadCharacter, o.alphabetSize), nil
	case KindBoyerMooreGoodSuffix:
		return NewBoyerMoore(pattern, GoodSuffix, o.alphabetSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindKMP, KindRabinKarp, KindBoyerMooreBadChar, KindBoyerMooreGoodSuffix}
}

// ParseKind maps a user supplied name to a Kind. A few legacy spellings are
// accepted as well.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "kmp", "KMP", "knuth-morris-pratt":
		return KindKMP, nil
	case "rabin-karp", "rk", "RK":
		return KindRabinKarp, nil
	case "bm-bad-char", "bm_bad", "BM_bad", "boyer-moore-bad-char":
		return KindBoyerMooreBadChar, nil
	case "bm-good-suffix", "bm_good", "BM_good", "boyer-moore-good-suffix":
		return KindBoyerMooreGoodSuffix, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}
