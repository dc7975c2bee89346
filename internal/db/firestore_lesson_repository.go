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

const lessonsCollection = "lessons"

// firestoreLessonRepository implements LessonRepository using Firestore.
type firestoreLessonRepository struct {
	client *firestore.Client
}

// NewFirestoreLessonRepository creates a new instance of firestoreLessonRepository.
func NewFirestoreLessonRepository(client *firestore.Client) LessonRepository {
	return &firestoreLessonRepository{client: client}
}

// Create adds a lesson under an auto-generated document ID.
func (r *firestoreLessonRepository) Create(ctx context.Context, lesson *models.Lesson) (string, error) {
	ref := r.client.Collection(lessonsCollection).NewDoc()
	if lesson.Likes == nil {
		lesson.Likes = []string{}
	}
	if _, err := ref.Create(ctx, lesson); err != nil {
		return "", fmt.Errorf("failed to create lesson: %w", err)
	}
	lesson.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreLessonRepository) GetByID(ctx context.Context, lessonID string) (*models.Lesson, error) {
	ref, err := docRef(r.client, lessonsCollection, lessonID)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson '%s': %w", lessonID, err)
	}
	return decodeLesson(snap)
}

// List applies the filter as equality clauses and returns newest first.
// Filtering on a field plus ordering by createdAt needs a composite index per field.
func (r *firestoreLessonRepository) List(ctx context.Context, filter LessonFilter) ([]*models.Lesson, error) {
	q := r.client.Collection(lessonsCollection).Query
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	if filter.CreatorName != "" {
		q = q.Where("user.name", "==", filter.CreatorName)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	lessons := []*models.Lesson{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate lessons: %w", err)
		}
		lesson, err := decodeLesson(snap)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

// Delete removes the lesson. The Exists precondition turns a missing document into ErrNotFound.
func (r *firestoreLessonRepository) Delete(ctx context.Context, lessonID string) error {
	ref, err := docRef(r.client, lessonsCollection, lessonID)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete lesson '%s': %w", lessonID, err)
	}
	return nil
}

// AddLike uses ArrayUnion, which Firestore applies atomically and without duplicates.
func (r *firestoreLessonRepository) AddLike(ctx context.Context, lessonID, likerID string) error {
	ref, err := docRef(r.client, lessonsCollection, lessonID)
	if err != nil {
		return err
	}
	_, err = ref.Update(ctx, []firestore.Update{{Path: "likes", Value: firestore.ArrayUnion(likerID)}})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
		}
		return fmt.Errorf("failed to like lesson '%s': %w", lessonID, err)
	}
	return nil
}

func decodeLesson(snap *firestore.DocumentSnapshot) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := snap.DataTo(&lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson '%s': %w", snap.Ref.ID, err)
	}
	lesson.ID = snap.Ref.ID
	if lesson.Likes == nil {
		lesson.Likes = []string{}
	}
	return &lesson, nil
}
