package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifeledger-backend-go/internal/models"
)

// mongoUser carries the ObjectID that models.User keeps as a hex string.
type mongoUser struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.User `bson:",inline"`
}

func (d *mongoUser) model() *models.User {
	u := d.User
	u.ID = d.ID.Hex()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	return &u
}

// mongoUserRepository implements UserRepository on MongoDB. A unique index on
// email makes Create fail with a duplicate key error for a taken email.
type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(database *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: database.Collection(usersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	res, err := r.coll.InsertOne(ctx, mongoUser{User: *user})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user '%s': %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user '%s': %w", user.Email, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	oid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, userID)
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user '%s': %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", key, err)
	}
	return doc.model(), nil
}

func (r *mongoUserRepository) List(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoUserRepository) TopContributors(ctx context.Context, limit int) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "lessonsCount", Value: -1},
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cur.Close(ctx)

	users := []*models.User{}
	for cur.Next(ctx) {
		var doc mongoUser
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isPremium": premium}}, userID)
}

func (r *mongoUserRepository) SetPremiumByEmail(ctx context.Context, email string, premium bool) error {
	email = models.NormalizeEmail(email)
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"isPremium": premium}}, email)
}

func (r *mongoUserRepository) SetRole(ctx context.Context, userID string, role models.Role) error {
	oid, err := objectID(userID)
	if err != nil {
		return err
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": string(role)}}, userID)
}

func (r *mongoUserRepository) IncrementLessonsCount(ctx context.Context, email string, delta int64) error {
	email = models.NormalizeEmail(email)
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{"$inc": bson.M{"lessonsCount": delta}}, email)
}

// updateOne applies update and stamps updatedAt; zero matches means the user does not exist.
func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M, key string) error {
	update["$currentDate"] = bson.M{"updatedAt": true}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update user '%s': %w", key, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user '%s': %w", key, ErrNotFound)
	}
	return nil
}
