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

const usersCollection = "users"

// firestoreUserRepository implements UserRepository using Firestore.
// The normalized email is the document ID, which makes email uniqueness a
// property of Create.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	ref, err := docRef(r.client, usersCollection, userKey(user.Email))
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, user); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user '%s': %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user '%s': %w", user.Email, err)
	}
	user.ID = ref.ID
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	ref, err := docRef(r.client, usersCollection, userID)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, ref)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ref, err := docRef(r.client, usersCollection, userKey(email))
	if err != nil {
		return nil, err
	}
	return r.get(ctx, ref)
}

func (r *firestoreUserRepository) get(ctx context.Context, ref *firestore.DocumentRef) (*models.User, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user '%s': %w", ref.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", ref.ID, err)
	}
	return decodeUser(snap)
}

func (r *firestoreUserRepository) List(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	return collectUsers(iter)
}

func (r *firestoreUserRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	ref, err := docRef(r.client, usersCollection, userID)
	if err != nil {
		return err
	}
	return r.update(ctx, ref, []firestore.Update{{Path: "isPremium", Value: premium}})
}

func (r *firestoreUserRepository) SetPremiumByEmail(ctx context.Context, email string, premium bool) error {
	return r.SetPremium(ctx, userKey(email), premium)
}

func (r *firestoreUserRepository) SetRole(ctx context.Context, userID string, role models.Role) error {
	ref, err := docRef(r.client, usersCollection, userID)
	if err != nil {
		return err
	}
	return r.update(ctx, ref, []firestore.Update{{Path: "role", Value: string(role)}})
}

func (r *firestoreUserRepository) IncrementLessonsCount(ctx context.Context, email string, delta int64) error {
	ref, err := docRef(r.client, usersCollection, userKey(email))
	if err != nil {
		return err
	}
	return r.update(ctx, ref, []firestore.Update{{Path: "lessonsCount", Value: firestore.Increment(delta)}})
}

// update applies fields to an existing document; Update fails with NotFound
// instead of creating the document.
func (r *firestoreUserRepository) update(ctx context.Context, ref *firestore.DocumentRef, fields []firestore.Update) error {
	fields = append(fields, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	if _, err := ref.Update(ctx, fields); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user '%s': %w", ref.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user '%s': %w", ref.ID, err)
	}
	return nil
}

func (r *firestoreUserRepository) TopContributors(ctx context.Context, limit int) ([]*models.User, error) {
	return collectUsers(topContributorsQuery(r.client, limit).Documents(ctx))
}

// topContributorsQuery orders by every tie-break field, document ID last, so the
// limit is applied after the full ordering. Needs the composite index
// (lessonsCount desc, createdAt asc).
func topContributorsQuery(client *firestore.Client, limit int) firestore.Query {
	q := client.Collection(usersCollection).
		OrderBy("lessonsCount", firestore.Desc).
		OrderBy("createdAt", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func collectUsers(iter *firestore.DocumentIterator) ([]*models.User, error) {
	defer iter.Stop()
	users := []*models.User{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		user, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user '%s': %w", snap.Ref.ID, err)
	}
	user.ID = snap.Ref.ID
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return &user, nil
}
