package plagiarism

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lowerCanon lowercases and collapses whitespace.
type lowerCanon struct {
	err error
}

func (c lowerCanon) Canonicalize(ctx context.Context, raw string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(strings.ToLower(raw)), " "), nil
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession(lowerCanon{}, 2)
	assert.Equal(t, models.StepIdle, s.State())

	_, err := s.Search(context.Background(), matcher.KindKMP, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, s.SetPattern(context.Background(), "Red  Green BLUE"))
	assert.Equal(t, models.StepPatternSet, s.State())
	assert.Equal(t, "red green blue", s.Pattern())
	assert.Equal(t, []string{"red green", "green blue"}, s.Shingles())

	result, err := s.Search(context.Background(), matcher.KindKMP, corpusOf("red green yellow"))
	require.NoError(t, err)
	assert.Equal(t, models.StepScored, s.State())
	assert.Equal(t, 50.0, result.Uniqueness)
	assert.Same(t, result, s.Result())

	// scored is terminal until a new pattern or reset
	_, err = s.Search(context.Background(), matcher.KindKMP, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, s.Reset())
	assert.Equal(t, models.StepIdle, s.State())
	assert.Empty(t, s.Pattern())
	assert.Nil(t, s.Shingles())
	assert.Nil(t, s.Result())
}

func TestSessionSetPatternReplacesResult(t *testing.T) {
	s := NewSession(lowerCanon{}, 1)
	require.NoError(t, s.SetPattern(context.Background(), "a"))
	_, err := s.Search(context.Background(), matcher.KindKMP, corpusOf("a"))
	require.NoError(t, err)

	require.NoError(t, s.SetPattern(context.Background(), "b"))
	assert.Equal(t, models.StepPatternSet, s.State())
	assert.Nil(t, s.Result())
}

func TestSessionFailedSearchFallsBack(t *testing.T) {
	s := NewSession(lowerCanon{}, 3)
	require.NoError(t, s.SetPattern(context.Background(), "too short"))

	_, err := s.Search(context.Background(), matcher.KindKMP, corpusOf("too short"))
	assert.ErrorIs(t, err, ErrEmptyShingleSet)
	assert.Equal(t, models.StepPatternSet, s.State())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.SetPattern(context.Background(), "long enough text here"))
	_, err = s.Search(ctx, matcher.KindKMP, corpusOf("long enough text"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.StepPatternSet, s.State())
	assert.Nil(t, s.Result())
}

func TestSessionCanonicalizeError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSession(lowerCanon{err: boom}, 3)

	err := s.SetPattern(context.Background(), "anything")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, models.StepIdle, s.State())
}

func TestSessionDefaultShingleSize(t *testing.T) {
	s := NewSession(lowerCanon{}, 0)
	require.NoError(t, s.SetPattern(context.Background(), "a b c d"))
	assert.Equal(t, []string{"a b c", "b c d"}, s.Shingles())
}

// gateCanon blocks every call until release is closed.
type gateCanon struct {
	entered chan struct{}
	release chan struct{}
}

func (g gateCanon) Canonicalize(ctx context.Context, raw string) (string, error) {
	g.entered <- struct{}{}
	<-g.release
	return lowerCanon{}.Canonicalize(ctx, raw)
}

func TestSessionRefusesWhileSettingPattern(t *testing.T) {
	s := NewSession(lowerCanon{}, 1)
	require.NoError(t, s.SetPattern(context.Background(), "a"))

	gate := gateCanon{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s.canon = gate

	done := make(chan error, 1)
	go func() { done <- s.SetPattern(context.Background(), "b") }()
	<-gate.entered

	_, err := s.Search(context.Background(), matcher.KindKMP, corpusOf("a"))
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, s.SetPattern(context.Background(), "c"), ErrInvalidState)
	assert.ErrorIs(t, s.Reset(), ErrInvalidState)

	close(gate.release)
	require.NoError(t, <-done)
	assert.Equal(t, models.StepPatternSet, s.State())
	assert.Equal(t, "b", s.Pattern())

	res, err := s.Search(context.Background(), matcher.KindKMP, corpusOf("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.HitShingles)
}
