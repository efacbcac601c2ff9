package preprocess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/RishiKendai/overlap/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upperCanon struct{}

func (upperCanon) Canonicalize(ctx context.Context, raw string) (string, error) {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), " "), nil
}

type memStore struct {
	mu   sync.Mutex
	docs []*models.Document
	ids  map[string]bool
	fail error
}

func newMemStore() *memStore {
	return &memStore{ids: map[string]bool{}}
}

func (m *memStore) InsertDocument(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.ids[doc.ID] {
		return fmt.Errorf("%w: %s", repository.ErrDocumentExists, doc.ID)
	}
	m.ids[doc.ID] = true
	m.docs = append(m.docs, doc)
	return nil
}

func (m *memStore) NextLegacyID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return repository.LegacyID(int64(len(m.docs)) + 1), nil
}

func (m *memStore) ListSummaries(ctx context.Context) ([]models.DocumentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DocumentSummary, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, models.DocumentSummary{ID: d.ID, Title: d.Title, Source: d.Source})
	}
	return out, nil
}

type countingBumper struct {
	n   int
	err error
}

func (c *countingBumper) BumpRevision(ctx context.Context) error {
	c.n++
	return c.err
}

func TestProcessSubmission(t *testing.T) {
	store, bumper := newMemStore(), &countingBumper{}
	svc := NewService(upperCanon{}, store, bumper)

	doc, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{
		ID:    "essay-1",
		Title: "Essay",
		Text:  "some  raw text",
	})
	require.NoError(t, err)

	assert.Equal(t, "essay-1", doc.ID)
	assert.Equal(t, "some  raw text", doc.RawText)
	assert.Equal(t, "SOME RAW TEXT", doc.NormalizedText)
	assert.Equal(t, models.SourceAPI, doc.Source)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.Equal(t, 1, bumper.n)
}

func TestProcessSubmissionAssignsLegacyIDs(t *testing.T) {
	store := newMemStore()
	svc := NewService(upperCanon{}, store, nil)

	first, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{Text: "one"})
	require.NoError(t, err)
	second, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{Text: "two"})
	require.NoError(t, err)

	assert.Equal(t, "text1", first.ID)
	assert.Equal(t, "text2", second.ID)
}

func TestProcessSubmissionLegacyIDCollision(t *testing.T) {
	store := newMemStore()
	svc := NewService(upperCanon{}, store, nil)

	_, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{ID: "text2", Text: "taken"})
	require.NoError(t, err)

	doc, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{Text: "new"})
	require.NoError(t, err)
	assert.NotEqual(t, "text2", doc.ID)
	assert.Len(t, doc.ID, 36)
}

func TestProcessSubmissionErrors(t *testing.T) {
	store := newMemStore()
	svc := NewService(upperCanon{}, store, nil)

	_, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{ID: "a", Text: "x"})
	require.NoError(t, err)
	_, err = svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{ID: "a", Text: "y"})
	assert.ErrorIs(t, err, repository.ErrDocumentExists)

	store.fail = errors.New("disk full")
	_, err = svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{ID: "b", Text: "z"})
	assert.ErrorIs(t, err, store.fail)
}

func TestProcessSubmissionRevisionFailureIsNotFatal(t *testing.T) {
	bumper := &countingBumper{err: errors.New("redis down")}
	svc := NewService(upperCanon{}, newMemStore(), bumper)

	_, err := svc.ProcessSubmission(context.Background(), &models.DocumentSubmission{Text: "x"})
	assert.NoError(t, err)
	assert.Equal(t, 1, bumper.n)
}

func TestImportSeed(t *testing.T) {
	store := newMemStore()
	svc := NewService(upperCanon{}, store, nil)
	seed := []models.DocumentSubmission{
		{ID: "text1", Text: "first", Source: models.SourceSeed},
		{ID: "text2", Text: "", Source: models.SourceSeed},
		{ID: "text3", Text: "third", Source: models.SourceSeed},
	}

	imported, skipped, err := svc.ImportSeed(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 1, skipped)

	imported, skipped, err = svc.ImportSeed(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)
	assert.Equal(t, 3, skipped)

	summaries, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "text1", summaries[0].ID)
	assert.Equal(t, models.SourceSeed, summaries[1].Source)
}
