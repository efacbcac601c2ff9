package canonical

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Canonicalize(t *testing.T) {
	p, err := NewPipeline("english")
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"stop words and plurals", "The cats, and the dogs!", "cat dog"},
		{"words with digits dropped", "room 101 has 3rd floor", "room floor"},
		{"stemming", "running jumps", "run jump"},
		{"whitespace collapses", "  cats \n\t dogs  ", "cat dog"},
		{"only stop words", "it is what it is", ""},
		{"empty", "", ""},
		{"russian stop words", "я и ты", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Canonicalize(context.Background(), tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipeline_NoStemming(t *testing.T) {
	p, err := NewPipeline(LanguageNone)
	require.NoError(t, err)

	got, err := p.Canonicalize(context.Background(), "Running CATS, quickly!")
	require.NoError(t, err)
	assert.Equal(t, "running cats quickly", got)
}

func TestPipeline_Cancelled(t *testing.T) {
	p, err := NewPipeline("english")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Canonicalize(ctx, "cats")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPipeline_UnknownLanguage(t *testing.T) {
	_, err := NewPipeline("klingon")
	assert.Error(t, err)
}

func TestFoldDiacritics(t *testing.T) {
	got, err := foldDiacritics("Crème brûlée")
	require.NoError(t, err)
	assert.Equal(t, "Creme brulee", got)

	got, err = foldDiacritics("кот")
	require.NoError(t, err)
	assert.Equal(t, "кот", got)
}

func TestStripPunctuation(t *testing.T) {
	assert.Equal(t, "dont", stripPunctuation("«don't»"))
	assert.Equal(t, "", stripPunctuation("—"))
	assert.Equal(t, "wellknown", stripPunctuation("well-known"))
}

type upperOnce struct{}

func (upperOnce) Canonicalize(_ context.Context, raw string) (string, error) {
	if raw == strings.ToLower(raw) {
		return raw + "!", nil
	}
	return strings.ToLower(raw), nil
}

type failing struct{}

func (failing) Canonicalize(context.Context, string) (string, error) {
	return "", errors.New("down")
}

func TestIsStable(t *testing.T) {
	ctx := context.Background()

	p, err := NewPipeline(LanguageNone)
	require.NoError(t, err)
	stable, err := IsStable(ctx, p, "The quick brown fox")
	require.NoError(t, err)
	assert.True(t, stable)

	stable, err = IsStable(ctx, upperOnce{}, "ABC")
	require.NoError(t, err)
	assert.False(t, stable)

	_, err = IsStable(ctx, failing{}, "abc")
	assert.Error(t, err)
}
