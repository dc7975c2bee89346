package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/config"
)

// Store bundles the repositories for one backing driver.
type Store struct {
	Users    UserRepository
	Lessons  LessonRepository
	Payments PaymentRepository
	Reports  ReportRepository

	close func(ctx context.Context) error
}

// Close releases driver connections. Safe on a memory store.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// NewStore builds the repositories selected by appConfig.StoreDriver. The firestore
// driver uses fb.Firestore, which must have been opened by NewFirebaseClients.
func NewStore(ctx context.Context, appConfig *config.Config, fb *FirebaseClients, logger *zap.Logger) (*Store, error) {
	switch appConfig.StoreDriver {
	case config.StoreFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("NewStore: firestore driver selected but no Firestore client")
		}
		return &Store{
			Users:    NewFirestoreUserRepository(fb.Firestore),
			Lessons:  NewFirestoreLessonRepository(fb.Firestore),
			Payments: NewFirestorePaymentRepository(fb.Firestore),
			Reports:  NewFirestoreReportRepository(fb.Firestore),
			// The Firestore client is owned and closed by FirebaseClients.
		}, nil
	case config.StoreMongo:
		client, database, err := NewMongoDatabase(ctx, appConfig, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:    NewMongoUserRepository(database),
			Lessons:  NewMongoLessonRepository(database),
			Payments: NewMongoPaymentRepository(database),
			Reports:  NewMongoReportRepository(database),
			close:    func(ctx context.Context) error { return disconnect(ctx, client) },
		}, nil
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return NewMemoryStore().Store(), nil
	default:
		return nil, fmt.Errorf("NewStore: unknown store driver %q", appConfig.StoreDriver)
	}
}

// Store exposes the memory repositories as a Store.
func (s *MemoryStore) Store() *Store {
	return &Store{Users: s.users, Lessons: s.lessons, Payments: s.payments, Reports: s.reports}
}

func disconnect(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
