package core

import (
	"context"

	"lifeledger-backend-go/internal/models"
)

// UserService defines the interface for user-related operations.
// actorEmail is always the verified token email of the caller.
type UserService interface {
	// GetOrCreate returns the user for req.Email, creating it on first sign-in.
	// The boolean reports whether a record was created.
	GetOrCreate(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error)
	GetByEmail(ctx context.Context, actorEmail, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	SetPremium(ctx context.Context, actorEmail, userID string, premium bool) (*models.User, error)
	GetRole(ctx context.Context, actorEmail, email string) (models.Role, error)
	SetRole(ctx context.Context, userID string, role models.Role) (*models.User, error)
	TopContributors(ctx context.Context) ([]*models.User, error)
	// Principal resolves a verified email to its stored role. ErrUserNotFound if absent.
	Principal(ctx context.Context, email string) (Principal, error)
}

// LessonService defines the interface for lesson-related operations.
type LessonService interface {
	Latest(ctx context.Context) ([]*models.Lesson, error)
	ByCategory(ctx context.Context, category string) ([]*models.Lesson, error)
	ByCreator(ctx context.Context, name string) ([]*models.Lesson, error)
	All(ctx context.Context) ([]*models.Lesson, error)
	Get(ctx context.Context, lessonID string) (*models.Lesson, error)
	Create(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error)
	Delete(ctx context.Context, actorEmail, lessonID string) error
	Like(ctx context.Context, lessonID, likerID string) (*models.Lesson, error)
}

// ReportService defines the interface for content reports.
type ReportService interface {
	Create(ctx context.Context, lessonID string, req models.CreateReportRequest) (*models.Report, error)
	List(ctx context.Context) ([]*models.Report, error)
}

// PaymentVerification is the outcome of verifying a checkout session.
type PaymentVerification struct {
	Success       bool   `json:"success"`
	IsPremium     bool   `json:"isPremium"`
	PaymentStatus string `json:"paymentStatus"`
}

// BillingService defines the interface for premium purchase operations.
type BillingService interface {
	// CreateCheckoutSession returns the hosted checkout URL for email.
	CreateCheckoutSession(ctx context.Context, email string) (string, error)
	// VerifyPayment always returns a non-nil verification when the session was
	// retrieved; an unpaid session also returns ErrPaymentNotCompleted.
	VerifyPayment(ctx context.Context, sessionID string) (*PaymentVerification, error)
}

// CheckoutParams describes a one-line-item hosted checkout.
type CheckoutParams struct {
	CustomerEmail      string
	ProductName        string
	ProductDescription string
	Currency           string
	UnitAmount         int64 // Minor currency units
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// CheckoutGateway is the payment processor. Implementations return errors
// wrapping ErrCheckoutSessionNotFound or ErrPaymentProvider.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*models.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}
