package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/db"
	"lifeledger-backend-go/internal/models"
)

// reportService implements the ReportService interface.
type reportService struct {
	reportRepo db.ReportRepository
	lessonRepo db.LessonRepository
	events     *EventPublisher
	logger     *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(reportRepo db.ReportRepository, lessonRepo db.LessonRepository, events *EventPublisher, logger *zap.Logger) ReportService {
	return &reportService{reportRepo: reportRepo, lessonRepo: lessonRepo, events: events, logger: logger}
}

// Create files a report. Uniqueness of (lesson, reporter) is left to the store's
// atomic create, so there is no existence check beforehand.
func (s *reportService) Create(ctx context.Context, lessonID string, req models.CreateReportRequest) (*models.Report, error) {
	reporter := models.NormalizeEmail(req.ReporterEmail)
	if reporter == "" {
		return nil, fmt.Errorf("%w: reporterEmail is required", ErrValidation)
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, translate(err, ErrLessonNotFound, "lesson '%s'", lessonID)
	}

	report := &models.Report{
		LessonID:      lesson.ID,
		LessonTitle:   lesson.Title,
		ReporterEmail: reporter,
		Reason:        strings.TrimSpace(req.Reason),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: lesson '%s'", ErrDuplicateReport, lessonID)
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.events.Publish(ctx, EventLessonReported, map[string]string{
		"reportId":      report.ID,
		"lessonId":      report.LessonID,
		"reporterEmail": report.ReporterEmail,
	})
	s.logger.Info("Lesson reported", zap.String("lesson_id", lessonID), zap.String("reporter", reporter))
	return report, nil
}

func (s *reportService) List(ctx context.Context) ([]*models.Report, error) {
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
