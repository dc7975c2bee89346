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

// PremiumOffer is the single product sold through checkout.
type PremiumOffer struct {
	ProductName        string
	ProductDescription string
	Currency           string
	UnitAmount         int64  // Minor currency units
	Domain             string // Front-end origin used for the redirect URLs
}

// DefaultPremiumOffer returns the lifetime premium product for the given price and domain.
func DefaultPremiumOffer(currency string, unitAmount int64, domain string) PremiumOffer {
	return PremiumOffer{
		ProductName:        "LifeLedger Premium Subscription",
		ProductDescription: "Life time premium access to all features",
		Currency:           currency,
		UnitAmount:         unitAmount,
		Domain:             strings.TrimRight(domain, "/"),
	}
}

// billingService implements the BillingService interface.
type billingService struct {
	gateway     CheckoutGateway
	userRepo    db.UserRepository
	paymentRepo db.PaymentRepository
	offer       PremiumOffer
	events      *EventPublisher
	logger      *zap.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(
	gateway CheckoutGateway,
	userRepo db.UserRepository,
	paymentRepo db.PaymentRepository,
	offer PremiumOffer,
	events *EventPublisher,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		gateway:     gateway,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		offer:       offer,
		events:      events,
		logger:      logger,
	}
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerEmail:      email,
		ProductName:        s.offer.ProductName,
		ProductDescription: s.offer.ProductDescription,
		Currency:           s.offer.Currency,
		UnitAmount:         s.offer.UnitAmount,
		SuccessURL:         s.offer.Domain + "/payments/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          s.offer.Domain + "/payments/payment-cancel",
		Metadata:           map[string]string{"userEmail": email},
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("Checkout session created", zap.String("session_id", sess.ID), zap.String("email", email))
	return sess.URL, nil
}

// VerifyPayment grants premium for a paid session and records the payment once.
// Repeating it for the same session is a no-op that reports success again.
func (s *billingService) VerifyPayment(ctx context.Context, sessionID string) (*PaymentVerification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrValidation)
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Paid() {
		return &PaymentVerification{PaymentStatus: sess.PaymentStatus},
			fmt.Errorf("%w: session '%s' is %s", ErrPaymentNotCompleted, sessionID, sess.PaymentStatus)
	}

	email := sess.PayerEmail()
	if email == "" {
		return nil, fmt.Errorf("%w: paid session '%s' carries no customer email", ErrPaymentProvider, sessionID)
	}

	if err := s.grantPremium(ctx, email); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Email:           email,
		Amount:          models.MajorUnits(sess.AmountTotal, sess.Currency),
		Currency:        sess.Currency,
		PaymentStatus:   models.PaymentStatusCompleted,
		SessionID:       sess.ID,
		PaymentIntentID: sess.PaymentIntentID,
		CreatedAt:       time.Now().UTC(),
	}
	switch err := s.paymentRepo.Create(ctx, payment); {
	case err == nil:
		s.events.Publish(ctx, EventPaymentCompleted, map[string]interface{}{
			"sessionId": payment.SessionID,
			"email":     payment.Email,
			"amount":    payment.Amount,
			"currency":  payment.Currency,
		})
		s.logger.Info("Payment recorded", zap.String("session_id", sessionID), zap.String("email", email))
	case errors.Is(err, db.ErrAlreadyExists):
		s.logger.Debug("Payment already recorded", zap.String("session_id", sessionID))
	default:
		return nil, fmt.Errorf("failed to record payment for session '%s': %w", sessionID, err)
	}

	return &PaymentVerification{Success: true, IsPremium: true, PaymentStatus: sess.PaymentStatus}, nil
}

// grantPremium sets the flag, creating the user when the payer never signed in.
func (s *billingService) grantPremium(ctx context.Context, email string) error {
	err := s.userRepo.SetPremiumByEmail(ctx, email, true)
	if !errors.Is(err, db.ErrNotFound) {
		if err != nil {
			return fmt.Errorf("failed to grant premium to '%s': %w", email, err)
		}
		return nil
	}

	now := time.Now().UTC()
	user := &models.User{Email: email, Role: models.RoleUser, IsPremium: true, CreatedAt: now, UpdatedAt: now}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return s.userRepo.SetPremiumByEmail(ctx, email, true)
		}
		return fmt.Errorf("failed to create premium user '%s': %w", email, err)
	}
	s.logger.Info("Created user record for payer", zap.String("email", email))
	return nil
}
