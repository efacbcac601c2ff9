package matcher

// KnuthMorrisPratt scans the text once, left to right, and never moves back in
// the text. It does best on texts with tight repetition.
type KnuthMorrisPratt struct {
	pattern string
	border  []int
}

func NewKnuthMorrisPratt(pattern string) *KnuthMorrisPratt {
	return &KnuthMorrisPratt{
		pattern: pattern,
		border:  borders(pattern),
	}
}

func (kmp *KnuthMorrisPratt) Kind() Kind {
	return KindKMP
}

func (kmp *KnuthMorrisPratt) Pattern() string {
	return kmp.pattern
}

func (kmp *KnuthMorrisPratt) String() string {
	return "KNUTH-MORRIS-PRATT"
}

func (kmp *KnuthMorrisPratt) Search(text string) []int {
	m := len(kmp.pattern)
	if m == 0 || len(text) < m {
		return nil
	}

	var ret []int
	matched := 0
	for i := 0; i < len(text); i++ {
		for matched > 0 && text[i] != kmp.pattern[matched] {
			matched = kmp.border[matched-1]
		}
		if text[i] == kmp.pattern[matched] {
			matched++
		}
		if matched == m {
			ret = append(ret, i-m+1)
			matched = kmp.border[m-1]
		}
	}
	return ret
}

// borders returns b where b[i] is the length of the longest proper prefix of
// x[:i+1] that is also its suffix.
func borders(x string) []int {
	b := make([]int, len(x))
	k := 0
	for i := 1; i < len(x); i++ {
		for k > 0 && x[k] != x[i] {
			k = b[k-1]
		}
		if x[k] == x[i] {
			k++
		}
		b[i] = k
	}
	return b
}
