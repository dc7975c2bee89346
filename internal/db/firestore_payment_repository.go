package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifeledger-backend-go/internal/models"
)

const paymentsCollection = "payments"

// firestorePaymentRepository implements PaymentRepository using Firestore.
// Payments are keyed by checkout session ID.
type firestorePaymentRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentRepository creates a new instance of firestorePaymentRepository.
func NewFirestorePaymentRepository(client *firestore.Client) PaymentRepository {
	return &firestorePaymentRepository{client: client}
}

func (r *firestorePaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	ref, err := docRef(r.client, paymentsCollection, payment.SessionID)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, payment); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("payment for session '%s': %w", payment.SessionID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create payment for session '%s': %w", payment.SessionID, err)
	}
	payment.ID = ref.ID
	return nil
}

func (r *firestorePaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	ref, err := docRef(r.client, paymentsCollection, sessionID)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("payment for session '%s': %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment for session '%s': %w", sessionID, err)
	}
	var payment models.Payment
	if err := snap.DataTo(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment '%s': %w", sessionID, err)
	}
	payment.ID = snap.Ref.ID
	return &payment, nil
}
