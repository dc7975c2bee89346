package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifeledger-backend-go/internal/models"
)

type mongoReport struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	models.Report `bson:",inline"`
}

// mongoReportRepository implements ReportRepository on MongoDB with a unique
// (lessonId, reporterEmail) index.
type mongoReportRepository struct {
	coll *mongo.Collection
}

// NewMongoReportRepository creates a new instance of mongoReportRepository.
func NewMongoReportRepository(database *mongo.Database) ReportRepository {
	return &mongoReportRepository{coll: database.Collection(reportsCollection)}
}

func (r *mongoReportRepository) Create(ctx context.Context, report *models.Report) error {
	report.ReporterEmail = models.NormalizeEmail(report.ReporterEmail)
	res, err := r.coll.InsertOne(ctx, mongoReport{Report: *report})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("report on lesson '%s' by '%s': %w", report.LessonID, report.ReporterEmail, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create report on lesson '%s': %w", report.LessonID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer cur.Close(ctx)

	reports := []*models.Report{}
	for cur.Next(ctx) {
		var doc mongoReport
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		rep := doc.Report
		rep.ID = doc.ID.Hex()
		reports = append(reports, &rep)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}
