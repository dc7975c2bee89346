package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"lifeledger-backend-go/internal/models"
)

type mongoPayment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	models.Payment `bson:",inline"`
}

// mongoPaymentRepository implements PaymentRepository on MongoDB with a unique sessionId index.
type mongoPaymentRepository struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepository creates a new instance of mongoPaymentRepository.
func NewMongoPaymentRepository(database *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{coll: database.Collection(paymentsCollection)}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	res, err := r.coll.InsertOne(ctx, mongoPayment{Payment: *payment})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("payment for session '%s': %w", payment.SessionID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create payment for session '%s': %w", payment.SessionID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var doc mongoPayment
	if err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("payment for session '%s': %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment for session '%s': %w", sessionID, err)
	}
	p := doc.Payment
	p.ID = doc.ID.Hex()
	return &p, nil
}
