package matcher

// Heuristic picks the shift rule a BoyerMoore matcher uses after a comparison.
type Heuristic int

const (
	// BadCharacter shifts by the last occurrence of the mismatching text byte
	// in the pattern.
	BadCharacter Heuristic = iota
	// GoodSuffix shifts to the next occurrence of the already matched suffix.
	GoodSuffix
)

// BoyerMoore compares the pattern right to left against a window of the text
// and uses the precomputed tables to decide how far the window moves. Both
// heuristics are computed up front. The one picked at construction decides
// the shift, and the two are never combined.
type BoyerMoore struct {
	pattern   string
	heuristic Heuristic
	// last maps byte % len(last) to the last pattern index holding a byte in
	// that slot, or -1. Colliding bytes share a slot; the higher index wins,
	// which can only shorten a shift.
	last []int
	// shift[j+1] is the good-suffix shift after a mismatch at pattern index j,
	// shift[0] the shift after a full match.
	shift []int
}

func NewBoyerMoore(pattern string, heuristic Heuristic, alphabetSize int) *BoyerMoore {
	if alphabetSize <= 0 {
		alphabetSize = DefaultAlphabetSize
	}
	return &BoyerMoore{
		pattern:   pattern,
		heuristic: heuristic,
		last:      badCharacterTable(pattern, alphabetSize),
		shift:     goodSuffixTable(pattern),
	}
}

func (bm *BoyerMoore) Kind() Kind {
	if bm.heuristic == GoodSuffix {
		return KindBoyerMooreGoodSuffix
	}
	return KindBoyerMooreBadChar
}

func (bm *BoyerMoore) Pattern() string {
	return bm.pattern
}

func (bm *BoyerMoore) String() string {
	if bm.heuristic == GoodSuffix {
		return "BOYER-MOORE (GOOD SUFFIX)"
	}
	return "BOYER-MOORE (BAD CHARACTER)"
}

func (bm *BoyerMoore) Search(text string) []int {
	m, n := len(bm.pattern), len(text)
	if m == 0 || n < m {
		return nil
	}

	var ret []int
	for s := 0; s <= n-m; {
		j := m - 1
		for j >= 0 && bm.pattern[j] == text[s+j] {
			j--
		}
		if j < 0 {
			ret = append(ret, s)
			s += bm.matchShift(text, s)
			continue
		}
		s += bm.mismatchShift(text, s, j)
	}
	return ret
}

// matchShift is the advance after a full match at s.
func (bm *BoyerMoore) matchShift(text string, s int) int {
	m := len(bm.pattern)
	if bm.heuristic == GoodSuffix {
		return bm.shift[0]
	}
	if s+m < len(text) {
		return m - bm.lastOccurrence(text[s+m])
	}
	return 1
}

// mismatchShift is the advance after text[s+j] failed to match pattern[j].
func (bm *BoyerMoore) mismatchShift(text string, s, j int) int {
	if bm.heuristic == GoodSuffix {
		return bm.shift[j+1]
	}
	return max(1, j-bm.lastOccurrence(text[s+j]))
}

func (bm *BoyerMoore) lastOccurrence(c byte) int {
	return bm.last[int(c)%len(bm.last)]
}

func badCharacterTable(pattern string, size int) []int {
	last := make([]int, size)
	for i := range last {
		last[i] = -1
	}
	for i := 0; i < len(pattern); i++ {
		last[int(pattern[i])%size] = i
	}
	return last
}

// goodSuffixTable builds the strong good-suffix shifts in two passes. The
// first pass records, for every suffix, the nearest earlier occurrence that is
// preceded by a different byte. The second fills the remaining slots from the
// borders of the whole pattern.
func goodSuffixTable(pattern string) []int {
	m := len(pattern)
	shift := make([]int, m+1)
	// bpos[i] is the start of the widest border of pattern[i:].
	bpos := make([]int, m+1)

	i, j := m, m+1
	bpos[i] = j
	for i > 0 {
		for j <= m && pattern[i-1] != pattern[j-1] {
			if shift[j] == 0 {
				shift[j] = j - i
			}
			j = bpos[j]
		}
		i--
		j--
		bpos[i] = j
	}

	j = bpos[0]
	for i = 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = j
		}
		if i == j {
			j = bpos[j]
		}
	}
	return shift
}
