package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RishiKendai/overlap/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const reportsCollection = "overlap_reports"

type ReportsRepository struct {
	mongoRepo *MongoRepository
}

func NewReportsRepository(mongoRepo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ReportsRepository) InsertReport(ctx context.Context, report *models.Report) error {
	err := r.mongoRepo.InsertOne(ctx, reportsCollection, report)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// GetReport returns nil without error when no report has the id.
func (r *ReportsRepository) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := r.mongoRepo.FindOne(ctx, reportsCollection, bson.M{"_id": id}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &report, nil
}
