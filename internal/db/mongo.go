package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/config"
)

// NewMongoDatabase connects to MongoDB, pings the primary and ensures the unique indexes
// that back the repository uniqueness guarantees.
func NewMongoDatabase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	uri := appConfig.MongoConnectionString()
	if uri == "" {
		return nil, nil, fmt.Errorf("NewMongoDatabase: no connection string configured")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("Connected to MongoDB", zap.String("database", appConfig.MongoDatabase))

	database := client.Database(appConfig.MongoDatabase)
	if err := EnsureMongoIndexes(connectCtx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, database, nil
}

// EnsureMongoIndexes creates the unique and sort indexes. CreateMany is idempotent for identical specs.
func EnsureMongoIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "lessonsCount", Value: -1}, {Key: "createdAt", Value: 1}}},
		},
		lessonsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "user.name", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		reportsCollection: {
			{Keys: bson.D{{Key: "lessonId", Value: 1}, {Key: "reporterEmail", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for collection, specs := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// objectID parses a hex document ID, mapping parse failures to ErrInvalidID.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("'%s': %w", id, ErrInvalidID)
	}
	return oid, nil
}
