package shingle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "three word windows",
			text: "cat sit mat dog run",
			size: 3,
			want: []string{"cat sit mat", "sit mat dog", "mat dog run"},
		},
		{
			name: "exactly one window",
			text: "cat sit mat",
			size: 3,
			want: []string{"cat sit mat"},
		},
		{
			name: "too short",
			text: "cat sit",
			size: 3,
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			size: 3,
			want: nil,
		},
		{
			name: "irregular whitespace collapses",
			text: "  cat\tsit \n mat  ",
			size: 2,
			want: []string{"cat sit", "sit mat"},
		},
		{
			name: "size one",
			text: "a b",
			size: 1,
			want: []string{"a", "b"},
		},
		{
			name: "non-positive size",
			text: "a b c",
			size: 0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.text, tt.size))
		})
	}
}

func TestGenerate_Count(t *testing.T) {
	text := "one two three four five six seven"
	for size := 1; size <= 7; size++ {
		assert.Len(t, Generate(text, size), 7-size+1)
	}
}
