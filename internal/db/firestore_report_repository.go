package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifeledger-backend-go/internal/models"
)

const reportsCollection = "reports"

// firestoreReportRepository implements ReportRepository using Firestore.
// The document ID is derived from (lessonId, reporterEmail) so Create rejects repeats atomically.
type firestoreReportRepository struct {
	client *firestore.Client
}

// NewFirestoreReportRepository creates a new instance of firestoreReportRepository.
func NewFirestoreReportRepository(client *firestore.Client) ReportRepository {
	return &firestoreReportRepository{client: client}
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *models.Report) error {
	report.ReporterEmail = models.NormalizeEmail(report.ReporterEmail)
	ref := r.client.Collection(reportsCollection).Doc(reportKey(report.LessonID, report.ReporterEmail))
	if _, err := ref.Create(ctx, report); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("report on lesson '%s' by '%s': %w", report.LessonID, report.ReporterEmail, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create report on lesson '%s': %w", report.LessonID, err)
	}
	report.ID = ref.ID
	return nil
}

func (r *firestoreReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	iter := r.client.Collection(reportsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	reports := []*models.Report{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports: %w", err)
		}
		var report models.Report
		if err := snap.DataTo(&report); err != nil {
			return nil, fmt.Errorf("failed to decode report '%s': %w", snap.Ref.ID, err)
		}
		report.ID = snap.Ref.ID
		reports = append(reports, &report)
	}
	return reports, nil
}
