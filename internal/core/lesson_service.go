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
	"lifeledger-backend-go/pkg/cache"
)

// Feed sizes.
const (
	LatestLessonsLimit   = 6
	CategoryLessonsLimit = 4
)

// lessonService implements the LessonService interface.
type lessonService struct {
	lessonRepo db.LessonRepository
	userRepo   db.UserRepository
	users      UserService
	feeds      *feedCache
	events     *EventPublisher
	logger     *zap.Logger
}

// NewLessonService creates a new LessonService. feedStore may be nil to disable caching.
func NewLessonService(
	lessonRepo db.LessonRepository,
	userRepo db.UserRepository,
	users UserService,
	feedStore cache.Cache,
	feedTTL time.Duration,
	events *EventPublisher,
	logger *zap.Logger,
) LessonService {
	s := &lessonService{
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		users:      users,
		events:     events,
		logger:     logger,
	}
	if feedStore != nil {
		s.feeds = &feedCache{cache: feedStore, ttl: feedTTL, logger: logger}
	}
	return s
}

func (s *lessonService) Latest(ctx context.Context) ([]*models.Lesson, error) {
	return s.cachedList(ctx, latestFeedKey, db.LessonFilter{Limit: LatestLessonsLimit})
}

func (s *lessonService) ByCategory(ctx context.Context, category string) ([]*models.Lesson, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	return s.cachedList(ctx, categoryFeedKey(category), db.LessonFilter{Category: category, Limit: CategoryLessonsLimit})
}

// cachedList reads through the feed cache. A miss that races an invalidation can
// write back a feed read before the write; the entry's TTL bounds that staleness.
func (s *lessonService) cachedList(ctx context.Context, key string, filter db.LessonFilter) ([]*models.Lesson, error) {
	if lessons, ok := s.feeds.get(ctx, key); ok {
		return lessons, nil
	}
	lessons, err := s.lessonRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	s.feeds.set(ctx, key, lessons)
	return lessons, nil
}

func (s *lessonService) ByCreator(ctx context.Context, name string) ([]*models.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx, db.LessonFilter{CreatorName: name})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons by '%s': %w", name, err)
	}
	return lessons, nil
}

func (s *lessonService) All(ctx context.Context) ([]*models.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx, db.LessonFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *lessonService) Get(ctx context.Context, lessonID string) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, translate(err, ErrLessonNotFound, "lesson '%s'", lessonID)
	}
	return lesson, nil
}

// Create inserts the lesson, then bumps the creator's lessonsCount. The two writes
// are not transactional: a failed increment is logged and the lesson is kept.
func (s *lessonService) Create(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error) {
	if req.User == nil || models.NormalizeEmail(req.User.Email) == "" {
		return nil, fmt.Errorf("%w: user.email is required", ErrValidation)
	}

	author := *req.User
	author.Email = models.NormalizeEmail(author.Email)
	lesson := &models.Lesson{
		Title:         req.Title,
		Description:   req.Description,
		Category:      strings.TrimSpace(req.Category),
		EmotionalTone: req.EmotionalTone,
		Image:         req.Image,
		Privacy:       req.Privacy,
		AccessLevel:   req.AccessLevel,
		User:          author,
		Likes:         []string{},
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	if err := s.userRepo.IncrementLessonsCount(ctx, author.Email, 1); err != nil {
		s.logger.Warn("Lesson created but contributor count not incremented",
			zap.String("lesson_id", lesson.ID), zap.String("email", author.Email), zap.Error(err))
	}

	s.feeds.invalidate(ctx, lesson.Category)
	s.events.Publish(ctx, EventLessonCreated, map[string]string{
		"lessonId": lesson.ID,
		"email":    author.Email,
		"category": lesson.Category,
	})
	s.logger.Info("Lesson created", zap.String("lesson_id", lesson.ID), zap.String("email", author.Email))
	return lesson, nil
}

// Delete lets the lesson's creator or an admin remove it.
func (s *lessonService) Delete(ctx context.Context, actorEmail, lessonID string) error {
	lesson, err := s.Get(ctx, lessonID)
	if err != nil {
		return err
	}
	actor, err := s.actor(ctx, actorEmail)
	if err != nil {
		return err
	}
	if err := Authorize(actor, AnyOf(IsSelf(lesson.User.Email), IsAdmin())); err != nil {
		return err
	}

	if err := s.lessonRepo.Delete(ctx, lessonID); err != nil {
		return translate(err, ErrLessonNotFound, "lesson '%s'", lessonID)
	}
	s.feeds.invalidate(ctx, lesson.Category)
	s.logger.Info("Lesson deleted", zap.String("lesson_id", lessonID), zap.String("actor", actor.Email))
	return nil
}

func (s *lessonService) actor(ctx context.Context, email string) (Principal, error) {
	p, err := s.users.Principal(ctx, email)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, ErrUserNotFound) {
		return Principal{Email: models.NormalizeEmail(email)}, nil
	}
	return Principal{}, err
}

// Like adds likerID to the lesson's like set and returns the updated lesson.
func (s *lessonService) Like(ctx context.Context, lessonID, likerID string) (*models.Lesson, error) {
	likerID = strings.TrimSpace(likerID)
	if likerID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	if err := s.lessonRepo.AddLike(ctx, lessonID, likerID); err != nil {
		return nil, translate(err, ErrLessonNotFound, "lesson '%s'", lessonID)
	}
	lesson, err := s.Get(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	s.feeds.invalidate(ctx, lesson.Category)
	return lesson, nil
}
