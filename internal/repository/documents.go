package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/overlap/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "corpus_documents"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
)

// DocumentsRepository stores the reference corpus. It is the corpus accessor
// of every check.
type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *DocumentsRepository) EnsureIndexes(ctx context.Context) error {
	if err := r.mongoRepo.EnsureIndex(ctx, documentsCollection, "createdAt"); err != nil {
		return fmt.Errorf("failed to create documents index: %w", err)
	}
	return nil
}

func (r *DocumentsRepository) InsertDocument(ctx context.Context, doc *models.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	err := r.mongoRepo.InsertOne(ctx, documentsCollection, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrDocumentExists, doc.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

func (r *DocumentsRepository) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.mongoRepo.FindOne(ctx, documentsCollection, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// ListDocuments returns the whole corpus in insertion order.
func (r *DocumentsRepository) ListDocuments(ctx context.Context) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

// ListSummaries lists the corpus without the document texts.
func (r *DocumentsRepository) ListSummaries(ctx context.Context) ([]models.DocumentSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"rawText": 0, "normalizedText": 0})

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, models.DocumentSummary{
			ID:        d.ID,
			Title:     d.Title,
			Source:    d.Source,
			CreatedAt: d.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *DocumentsRepository) CountDocuments(ctx context.Context) (int64, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

// NextLegacyID returns the next identifier in the text1, text2, ... scheme.
func (r *DocumentsRepository) NextLegacyID(ctx context.Context) (string, error) {
	count, err := r.CountDocuments(ctx)
	if err != nil {
		return "", err
	}
	return LegacyID(count + 1), nil
}

func LegacyID(n int64) string {
	return fmt.Sprintf("text%d", n)
}
