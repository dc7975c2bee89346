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

type mongoLesson struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	models.Lesson `bson:",inline"`
}

func (d *mongoLesson) model() *models.Lesson {
	l := d.Lesson
	l.ID = d.ID.Hex()
	if l.Likes == nil {
		l.Likes = []string{}
	}
	return &l
}

// mongoLessonRepository implements LessonRepository on MongoDB.
type mongoLessonRepository struct {
	coll *mongo.Collection
}

// NewMongoLessonRepository creates a new instance of mongoLessonRepository.
func NewMongoLessonRepository(database *mongo.Database) LessonRepository {
	return &mongoLessonRepository{coll: database.Collection(lessonsCollection)}
}

func (r *mongoLessonRepository) Create(ctx context.Context, lesson *models.Lesson) (string, error) {
	if lesson.Likes == nil {
		lesson.Likes = []string{}
	}
	res, err := r.coll.InsertOne(ctx, mongoLesson{Lesson: *lesson})
	if err != nil {
		return "", fmt.Errorf("failed to create lesson: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	lesson.ID = oid.Hex()
	return lesson.ID, nil
}

func (r *mongoLessonRepository) GetByID(ctx context.Context, lessonID string) (*models.Lesson, error) {
	oid, err := objectID(lessonID)
	if err != nil {
		return nil, err
	}
	var doc mongoLesson
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson '%s': %w", lessonID, err)
	}
	return doc.model(), nil
}

func (r *mongoLessonRepository) List(ctx context.Context, filter LessonFilter) ([]*models.Lesson, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.CreatorName != "" {
		query["user.name"] = filter.CreatorName
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer cur.Close(ctx)

	lessons := []*models.Lesson{}
	for cur.Next(ctx) {
		var doc mongoLesson
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode lesson: %w", err)
		}
		lessons = append(lessons, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}
	return lessons, nil
}

func (r *mongoLessonRepository) Delete(ctx context.Context, lessonID string) error {
	oid, err := objectID(lessonID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete lesson '%s': %w", lessonID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
	}
	return nil
}

// AddLike relies on $addToSet for set semantics.
func (r *mongoLessonRepository) AddLike(ctx context.Context, lessonID, likerID string) error {
	oid, err := objectID(lessonID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$addToSet": bson.M{"likes": likerID}})
	if err != nil {
		return fmt.Errorf("failed to like lesson '%s': %w", lessonID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
	}
	return nil
}
