package preprocess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/overlap/internal/canonical"
	"github.com/RishiKendai/overlap/internal/metrics"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/RishiKendai/overlap/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEmptyDocument is returned for submissions without any text.
var ErrEmptyDocument = errors.New("document text is empty")

// DocumentStore is the corpus persistence used by ingestion.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *models.Document) error
	NextLegacyID(ctx context.Context) (string, error)
	ListSummaries(ctx context.Context) ([]models.DocumentSummary, error)
}

// RevisionBumper invalidates cached check results after a corpus change.
type RevisionBumper interface {
	BumpRevision(ctx context.Context) error
}

// Service ingests corpus documents: it canonicalizes them once at write time
// so checks only ever search normalized text.
type Service struct {
	canon    canonical.Canonicalizer
	store    DocumentStore
	revision RevisionBumper
}

// NewService wires ingestion. revision may be nil.
func NewService(canon canonical.Canonicalizer, store DocumentStore, revision RevisionBumper) *Service {
	return &Service{
		canon:    canon,
		store:    store,
		revision: revision,
	}
}

// ProcessSubmission canonicalizes and stores one document. Documents without
// an id get the next legacy id, or a random one if that is taken.
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.DocumentSubmission) (*models.Document, error) {
	if strings.TrimSpace(submission.Text) == "" {
		return nil, ErrEmptyDocument
	}

	normalized, err := s.canon.Canonicalize(ctx, submission.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize: %w", err)
	}
	if again, err := s.canon.Canonicalize(ctx, normalized); err == nil && again != normalized {
		log.Warn().Str("documentId", submission.ID).Msg("Canonical form is not stable under re-canonicalization")
	}

	source := submission.Source
	if source == "" {
		source = models.SourceAPI
	}
	doc := &models.Document{
		ID:             submission.ID,
		Title:          submission.Title,
		RawText:        submission.Text,
		NormalizedText: normalized,
		Source:         source,
		CreatedAt:      time.Now(),
	}

	if err := s.insert(ctx, doc); err != nil {
		return nil, err
	}

	metrics.DocumentsIngested.WithLabelValues(source).Inc()
	s.bumpRevision(ctx)

	log.Info().
		Str("documentId", doc.ID).
		Str("source", source).
		Int("bytes", len(doc.NormalizedText)).
		Msg("Document ingested")

	return doc, nil
}

func (s *Service) insert(ctx context.Context, doc *models.Document) error {
	if doc.ID != "" {
		return s.store.InsertDocument(ctx, doc)
	}

	id, err := s.store.NextLegacyID(ctx)
	if err != nil {
		return fmt.Errorf("failed to allocate document id: %w", err)
	}
	doc.ID = id
	err = s.store.InsertDocument(ctx, doc)
	if !errors.Is(err, repository.ErrDocumentExists) {
		return err
	}

	// legacy ids collide once documents were deleted or named explicitly
	doc.ID = uuid.NewString()
	return s.store.InsertDocument(ctx, doc)
}

func (s *Service) bumpRevision(ctx context.Context) {
	if s.revision == nil {
		return
	}
	if err := s.revision.BumpRevision(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to bump corpus revision, cached results may be stale until they expire")
	}
}

// ImportSeed ingests seed documents in order. Documents that already exist
// are skipped, so importing the same seed twice is harmless.
func (s *Service) ImportSeed(ctx context.Context, docs []models.DocumentSubmission) (imported, skipped int, err error) {
	for i := range docs {
		if _, err := s.ProcessSubmission(ctx, &docs[i]); err != nil {
			if errors.Is(err, repository.ErrDocumentExists) || errors.Is(err, ErrEmptyDocument) {
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("failed to import %q: %w", docs[i].ID, err)
		}
		imported++
	}
	return imported, skipped, nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]models.DocumentSummary, error) {
	return s.store.ListSummaries(ctx)
}
