package db

import (
	"context"

	"lifeledger-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
// Email is unique: Create returns ErrAlreadyExists when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error // Sets user.ID on success
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error) // Newest first
	SetPremium(ctx context.Context, userID string, premium bool) error
	SetPremiumByEmail(ctx context.Context, email string, premium bool) error
	SetRole(ctx context.Context, userID string, role models.Role) error
	IncrementLessonsCount(ctx context.Context, email string, delta int64) error
	// TopContributors orders by lessonsCount desc, then createdAt asc, then ID asc.
	TopContributors(ctx context.Context, limit int) ([]*models.User, error)
}

// LessonFilter narrows a lesson listing. Zero values mean "no constraint".
type LessonFilter struct {
	Category    string
	CreatorName string
	Limit       int
}

// LessonRepository defines the interface for lesson data storage operations.
type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) (string, error) // Returns new lesson ID
	GetByID(ctx context.Context, lessonID string) (*models.Lesson, error)
	List(ctx context.Context, filter LessonFilter) ([]*models.Lesson, error) // Newest first
	Delete(ctx context.Context, lessonID string) error
	// AddLike appends likerID to the lesson's like set. Adding an existing liker is a no-op.
	AddLike(ctx context.Context, lessonID, likerID string) error
}

// PaymentRepository defines the interface for payment data storage operations.
// SessionID is unique: Create returns ErrAlreadyExists for a session that was already recorded.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
}

// ReportRepository defines the interface for report data storage operations.
// (LessonID, ReporterEmail) is unique: Create returns ErrAlreadyExists for a repeat report.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context) ([]*models.Report, error) // Newest first
}
