package matcher

import (
	"strings"
	"testing"
)

var benchText = strings.Repeat("the pleasures of heaven are with me and the pains of hell are with me ", 200) +
	"i do not say these things for a dollar"

func BenchmarkSearch(b *testing.B) {
	patterns := map[string]string{
		"short":   "hell",
		"shingle": "pains hell are",
		"absent":  "foo does not exist here",
		"tail":    "things for a dollar",
	}

	for _, kind := range Kinds() {
		for name, pattern := range patterns {
			m, err := New(kind, pattern)
			if err != nil {
				b.Fatal(err)
			}
			b.Run(string(kind)+"/"+name, func(b *testing.B) {
				b.SetBytes(int64(len(benchText)))
				for i := 0; i < b.N; i++ {
					_ = m.Search(benchText)
				}
			})
		}
	}
}
