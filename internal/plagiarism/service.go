package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/overlap/internal/cache"
	"github.com/RishiKendai/overlap/internal/canonical"
	"github.com/RishiKendai/overlap/internal/matcher"
	"github.com/RishiKendai/overlap/internal/metrics"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportStore persists finished reports.
type ReportStore interface {
	InsertReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// ResultCache returns a nil report on a miss. Keys carry the corpus
// revision, which Revision reports.
type ResultCache interface {
	Revision(ctx context.Context) (int64, error)
	Lookup(ctx context.Context, key cache.Key) (*models.Report, error)
	Store(ctx context.Context, key cache.Key, report *models.Report) error
}

// StatusTracker records the step of asynchronous checks.
type StatusTracker interface {
	Update(ctx context.Context, checkID string, step models.Step) error
	Get(ctx context.Context, checkID string) (models.Step, error)
}

// ServiceConfig holds the scoring knobs of a Service.
type ServiceConfig struct {
	ShingleSize      int
	DefaultAlgorithm matcher.Kind
	AlphabetSize     int
	Workers          int
	UnitTimeout      time.Duration
	CheckTimeout     time.Duration
}

// Service runs candidate checks: canonicalize, shingle, score against a
// fresh corpus snapshot, then cache and persist the report.
type Service struct {
	cfg     ServiceConfig
	canon   canonical.Canonicalizer
	corpus  CorpusAccessor
	reports ReportStore
	cache   ResultCache
	status  StatusTracker
	pool    *WorkerPool
}

// NewService wires a Service. reports, resultCache, status and pool may be
// nil; the features that need them are then disabled.
func NewService(
	cfg ServiceConfig,
	canon canonical.Canonicalizer,
	corpus CorpusAccessor,
	reports ReportStore,
	resultCache ResultCache,
	status StatusTracker,
	pool *WorkerPool,
) *Service {
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = matcher.KindKMP
	}
	if cfg.AlphabetSize <= 0 {
		cfg.AlphabetSize = matcher.DefaultAlphabetSize
	}
	return &Service{
		cfg:     cfg,
		canon:   canon,
		corpus:  corpus,
		reports: reports,
		cache:   resultCache,
		status:  status,
		pool:    pool,
	}
}

// Check scores the candidate synchronously.
func (s *Service) Check(ctx context.Context, req models.CheckRequest) (*models.Report, error) {
	return s.run(ctx, uuid.NewString(), req, nil)
}

// Submit queues the check on the worker pool and returns its report id.
func (s *Service) Submit(ctx context.Context, req models.CheckRequest) (string, error) {
	if s.pool == nil || s.status == nil {
		return "", errors.New("asynchronous checks are not configured")
	}
	if _, err := s.resolveKind(req.Algorithm); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := s.status.Update(ctx, id, models.StepIdle); err != nil {
		return "", err
	}

	job := &CheckJob{service: s, reportID: id, request: req}
	if err := s.pool.Submit(job); err != nil {
		return "", fmt.Errorf("failed to queue check: %w", err)
	}
	return id, nil
}

// Status returns the step of an asynchronous check.
func (s *Service) Status(ctx context.Context, id string) (models.Step, error) {
	if s.status == nil {
		return "", ErrStatusNotFound
	}
	return s.status.Get(ctx, id)
}

// GetReport returns a stored report, or nil if there is none.
func (s *Service) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if s.reports == nil {
		return nil, nil
	}
	return s.reports.GetReport(ctx, id)
}

func (s *Service) resolveKind(name string) (matcher.Kind, error) {
	if name == "" {
		return s.cfg.DefaultAlgorithm, nil
	}
	return matcher.ParseKind(name)
}

func (s *Service) aggregateOptions(kind matcher.Kind) []AggregateOption {
	alphabetSize := s.cfg.AlphabetSize
	return []AggregateOption{
		WithWorkers(s.cfg.Workers),
		WithUnitTimeout(s.cfg.UnitTimeout),
		WithBuilder(func(pattern string) (matcher.Matcher, error) {
			return matcher.New(kind, pattern, matcher.WithAlphabetSize(alphabetSize))
		}),
	}
}

func (s *Service) run(ctx context.Context, id string, req models.CheckRequest, onStep func(models.Step)) (*models.Report, error) {
	kind, err := s.resolveKind(req.Algorithm)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	session := NewSession(s.canon, s.cfg.ShingleSize)
	if err := session.SetPattern(ctx, req.Text); err != nil {
		return nil, s.fail(kind, err)
	}
	notify(onStep, models.StepPatternSet)

	if len(session.Shingles()) == 0 {
		return nil, s.fail(kind, ErrEmptyShingleSet)
	}

	// the revision is read once, before the snapshot, and the store below
	// reuses it
	key := cache.Key{Algorithm: string(kind), ShingleSize: session.shingleSize, Text: session.Pattern()}
	cacheable := s.revision(ctx, &key)
	if report := s.lookup(ctx, cacheable, key); report != nil {
		report.ID = id
		report.Cached = true
		report.CreatedAt = time.Now()
		if err := s.persist(ctx, report); err != nil {
			return nil, s.fail(kind, err)
		}
		s.observe(kind, "cached", report, start)
		notify(onStep, models.StepScored)
		return report, nil
	}

	corpus, err := LoadCorpus(ctx, s.corpus)
	if err != nil {
		return nil, s.fail(kind, err)
	}

	notify(onStep, models.StepSearching)
	result, err := session.Search(ctx, kind, corpus, s.aggregateOptions(kind)...)
	if err != nil {
		return nil, s.fail(kind, err)
	}

	report := &models.Report{
		ID:             id,
		Algorithm:      string(kind),
		ShingleSize:    session.shingleSize,
		NormalizedText: session.Pattern(),
		Uniqueness:     result.Uniqueness,
		Verdict:        Verdict(result.Uniqueness),
		TotalShingles:  result.TotalShingles,
		HitShingles:    result.HitShingles,
		Documents:      result.Documents,
		Hits:           result.Hits,
		Status:         models.StepScored,
		CreatedAt:      time.Now(),
	}

	if cacheable {
		if err := s.cache.Store(ctx, key, report); err != nil {
			log.Warn().Err(err).Str("reportId", id).Msg("Failed to cache report")
		}
	}
	if err := s.persist(ctx, report); err != nil {
		return nil, s.fail(kind, err)
	}

	s.observe(kind, "scored", report, start)
	notify(onStep, models.StepScored)

	log.Info().
		Str("reportId", id).
		Str("algorithm", string(kind)).
		Int("shingles", report.TotalShingles).
		Int("hitShingles", report.HitShingles).
		Float64("uniqueness", report.Uniqueness).
		Msg("Check completed")

	return report, nil
}

// revision stamps key with the current corpus revision. It reports false
// when the cache is absent or unreadable, and the run then bypasses it.
func (s *Service) revision(ctx context.Context, key *cache.Key) bool {
	if s.cache == nil {
		return false
	}
	rev, err := s.cache.Revision(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read corpus revision")
		return false
	}
	key.Revision = rev
	return true
}

func (s *Service) lookup(ctx context.Context, cacheable bool, key cache.Key) *models.Report {
	if !cacheable {
		return nil
	}
	report, err := s.cache.Lookup(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Result cache lookup failed")
		return nil
	}
	if report == nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return report
}

func (s *Service) persist(ctx context.Context, report *models.Report) error {
	if s.reports == nil {
		return nil
	}
	if err := s.reports.InsertReport(ctx, report); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

func (s *Service) fail(kind matcher.Kind, err error) error {
	metrics.CheckCount.WithLabelValues(string(kind), "failed").Inc()
	return err
}

func (s *Service) observe(kind matcher.Kind, status string, report *models.Report, start time.Time) {
	metrics.CheckCount.WithLabelValues(string(kind), status).Inc()
	metrics.CheckDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	metrics.Uniqueness.Observe(report.Uniqueness)
}

func notify(onStep func(models.Step), step models.Step) {
	if onStep != nil {
		onStep(step)
	}
}

// CheckJob runs one queued check on the worker pool.
type CheckJob struct {
	service  *Service
	reportID string
	request  models.CheckRequest
}

// Execute runs the check and records every step under the report id. A
// failed check is stored as a failed report so pollers see why.
func (j *CheckJob) Execute(ctx context.Context) error {
	s := j.service
	if s.cfg.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CheckTimeout)
		defer cancel()
	}

	update := func(step models.Step) {
		if err := s.status.Update(ctx, j.reportID, step); err != nil {
			log.Warn().Err(err).Str("reportId", j.reportID).Str("step", string(step)).Msg("Failed to update check status")
		}
	}

	_, err := s.run(ctx, j.reportID, j.request, update)
	if err == nil {
		return nil
	}

	// ctx may be done already; record the failure on a fresh one.
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if uerr := s.status.Update(failCtx, j.reportID, models.StepFailed); uerr != nil {
		log.Warn().Err(uerr).Str("reportId", j.reportID).Msg("Failed to mark check as failed")
	}
	failed := &models.Report{
		ID:        j.reportID,
		Algorithm: j.request.Algorithm,
		Status:    models.StepFailed,
		Error:     err.Error(),
		CreatedAt: time.Now(),
	}
	if perr := s.persist(failCtx, failed); perr != nil {
		log.Error().Err(perr).Str("reportId", j.reportID).Msg("Failed to store failed report")
	}
	return fmt.Errorf("check %s failed: %w", j.reportID, err)
}
