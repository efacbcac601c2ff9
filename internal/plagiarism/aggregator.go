package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyShingleSet means the candidate produced no shingles, so there
	// is nothing to score.
	ErrEmptyShingleSet = errors.New("candidate text yields no shingles")
	// ErrCorpusUnavailable means the corpus could not be loaded.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrUnitTimeout means a single (shingle, document) search ran longer
	// than the configured unit timeout.
	ErrUnitTimeout = errors.New("search unit exceeded timeout")
)

// CorpusAccessor supplies the reference documents for one run.
type CorpusAccessor interface {
	ListDocuments(ctx context.Context) ([]models.Document, error)
}

// LoadCorpus takes a snapshot of the corpus. Any accessor failure is
// reported as ErrCorpusUnavailable.
func LoadCorpus(ctx context.Context, accessor CorpusAccessor) ([]models.Document, error) {
	if accessor == nil {
		return nil, ErrCorpusUnavailable
	}
	docs, err := accessor.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}
	return docs, nil
}

// Result is the outcome of one aggregation run.
type Result struct {
	Uniqueness    float64 `json:"uniqueness"`
	TotalShingles int     `json:"totalShingles"`
	HitShingles   int     `json:"hitShingles"`
	Documents     int     `json:"documents"`
	// Hits are ordered by shingle index, then by corpus order.
	Hits []models.HitRecord `json:"hits"`
}

// Builder creates the matcher for one shingle.
type Builder func(pattern string) (matcher.Matcher, error)

type AggregateOption func(*Aggregator)

// WithWorkers bounds how many shingles are searched at once. Zero or less
// means GOMAXPROCS.
func WithWorkers(n int) AggregateOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithUnitTimeout fails the run when one (shingle, document) search takes
// longer than d. A search that already started is never interrupted.
func WithUnitTimeout(d time.Duration) AggregateOption {
	return func(a *Aggregator) {
		a.unitTimeout = d
	}
}

// WithBuilder replaces the matcher construction, e.g. to pass matcher options.
func WithBuilder(b Builder) AggregateOption {
	return func(a *Aggregator) {
		if b != nil {
			a.build = b
		}
	}
}

// Aggregator drives one search strategy over every shingle and corpus
// document. It keeps no state between runs.
type Aggregator struct {
	kind        matcher.Kind
	build       Builder
	workers     int
	unitTimeout time.Duration
}

func NewAggregator(kind matcher.Kind, opts ...AggregateOption) *Aggregator {
	a := &Aggregator{
		kind:    kind,
		workers: runtime.GOMAXPROCS(0),
		build: func(pattern string) (matcher.Matcher, error) {
			return matcher.New(kind, pattern)
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate scores shingles against corpus with the given strategy.
func Aggregate(ctx context.Context, kind matcher.Kind, shingles []string, corpus []models.Document, opts ...AggregateOption) (*Result, error) {
	return NewAggregator(kind, opts...).Run(ctx, shingles, corpus)
}

// Run searches every shingle in every document. A shingle counts as hit once,
// however many documents or offsets matched. The uniqueness score is
// |1 - hit/total| * 100. A cancelled or failed run returns no result.
func (a *Aggregator) Run(ctx context.Context, shingles []string, corpus []models.Document) (*Result, error) {
	if len(shingles) == 0 {
		return nil, ErrEmptyShingleSet
	}

	start := time.Now()
	perShingle := make([][]models.HitRecord, len(shingles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range shingles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			hits, err := a.searchShingle(gctx, i, shingles[i], corpus)
			if err != nil {
				return err
			}
			perShingle[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("aggregation cancelled: %w", ctx.Err())
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation cancelled: %w", err)
	}

	result := &Result{
		TotalShingles: len(shingles),
		Documents:     len(corpus),
		Hits:          []models.HitRecord{},
	}
	for _, hits := range perShingle {
		if len(hits) > 0 {
			result.HitShingles++
			result.Hits = append(result.Hits, hits...)
		}
	}
	result.Uniqueness = uniqueness(result.HitShingles, result.TotalShingles)

	log.Debug().
		Str("algorithm", string(a.kind)).
		Int("shingles", result.TotalShingles).
		Int("documents", result.Documents).
		Int("hitShingles", result.HitShingles).
		Float64("uniqueness", result.Uniqueness).
		Dur("took", time.Since(start)).
		Msg("Aggregation finished")

	return result, nil
}

// searchShingle builds the matcher once and reuses it for every document.
func (a *Aggregator) searchShingle(ctx context.Context, index int, shingle string, corpus []models.Document) ([]models.HitRecord, error) {
	m, err := a.build(shingle)
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher for shingle %d: %w", index, err)
	}

	var hits []models.HitRecord
	for _, doc := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unitStart := time.Now()
		occurrences := m.Search(doc.NormalizedText)
		if a.unitTimeout > 0 && time.Since(unitStart) > a.unitTimeout {
			return nil, fmt.Errorf("%w: shingle %d in document %s", ErrUnitTimeout, index, doc.ID)
		}

		if len(occurrences) > 0 {
			hits = append(hits, models.HitRecord{
				ShingleIndex: index,
				Shingle:      shingle,
				DocumentID:   doc.ID,
				Occurrences:  occurrences,
			})
		}
	}
	return hits, nil
}

func uniqueness(hit, total int) float64 {
	return math.Abs(1-float64(hit)/float64(total)) * 100
}
