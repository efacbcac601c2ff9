package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RishiKendai/overlap/internal/canonical"
	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/RishiKendai/overlap/internal/shingle"
)

// ErrInvalidState is returned when a Session operation is called out of order.
var ErrInvalidState = errors.New("invalid session state")

// Session walks one candidate text through
// idle -> pattern_set -> searching -> scored. Reset returns it to idle.
// A failed or cancelled search falls back to pattern_set. While SetPattern
// is canonicalizing, Search, Reset and other SetPattern calls are refused.
type Session struct {
	canon       canonical.Canonicalizer
	shingleSize int

	mu       sync.Mutex
	state    models.Step
	setting  bool
	pattern  string
	shingles []string
	result   *Result
}

func NewSession(canon canonical.Canonicalizer, shingleSize int) *Session {
	if shingleSize <= 0 {
		shingleSize = shingle.DefaultSize
	}
	return &Session{
		canon:       canon,
		shingleSize: shingleSize,
		state:       models.StepIdle,
	}
}

// SetPattern canonicalizes raw and shingles it. A candidate that is too
// short still reaches pattern_set; Search then reports ErrEmptyShingleSet.
func (s *Session) SetPattern(ctx context.Context, raw string) error {
	s.mu.Lock()
	if err := s.busy(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.setting = true
	s.mu.Unlock()

	normalized, err := s.canon.Canonicalize(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setting = false
	if err != nil {
		return fmt.Errorf("failed to canonicalize candidate: %w", err)
	}
	s.pattern = normalized
	s.shingles = shingle.Generate(normalized, s.shingleSize)
	s.result = nil
	s.state = models.StepPatternSet
	return nil
}

// Search scores the current pattern against corpus.
func (s *Session) Search(ctx context.Context, kind matcher.Kind, corpus []models.Document, opts ...AggregateOption) (*Result, error) {
	s.mu.Lock()
	if s.setting {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: pattern is being set", ErrInvalidState)
	}
	if s.state != models.StepPatternSet {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot search from %s", ErrInvalidState, state)
	}
	s.state = models.StepSearching
	shingles := s.shingles
	s.mu.Unlock()

	result, err := Aggregate(ctx, kind, shingles, corpus, opts...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = models.StepPatternSet
		return nil, err
	}
	s.result = result
	s.state = models.StepScored
	return result, nil
}

// Reset drops the pattern and any result.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.busy(); err != nil {
		return err
	}
	s.state = models.StepIdle
	s.pattern = ""
	s.shingles = nil
	s.result = nil
	return nil
}

// busy must be called with mu held.
func (s *Session) busy() error {
	switch {
	case s.state == models.StepSearching:
		return fmt.Errorf("%w: search in progress", ErrInvalidState)
	case s.setting:
		return fmt.Errorf("%w: pattern is being set", ErrInvalidState)
	}
	return nil
}

func (s *Session) State() models.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pattern returns the canonical candidate text.
func (s *Session) Pattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern
}

func (s *Session) Shingles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shingles
}

// Result returns the score of the last successful search, if any.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
