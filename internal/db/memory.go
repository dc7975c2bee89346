package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifeledger-backend-go/internal/models"
)

// MemoryStore keeps every collection in process memory. It backs STORE_DRIVER=memory
// and the service and handler tests. Each collection has its own mutex and no lock is
// held across collections.
type MemoryStore struct {
	users    *memoryUserRepository
	lessons  *memoryLessonRepository
	payments *memoryPaymentRepository
	reports  *memoryReportRepository
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    &memoryUserRepository{byID: map[string]*models.User{}, byEmail: map[string]string{}},
		lessons:  &memoryLessonRepository{byID: map[string]*memoryLesson{}},
		payments: &memoryPaymentRepository{bySession: map[string]*models.Payment{}},
		reports:  &memoryReportRepository{byKey: map[string]*models.Report{}},
	}
}

func (s *MemoryStore) Users() UserRepository       { return s.users }
func (s *MemoryStore) Lessons() LessonRepository   { return s.lessons }
func (s *MemoryStore) Payments() PaymentRepository { return s.payments }
func (s *MemoryStore) Reports() ReportRepository   { return s.reports }

func newMemoryID() string { return uuid.NewString() }

func parseMemoryID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("'%s': %w", id, ErrInvalidID)
	}
	return nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return fmt.Errorf("user '%s': %w", user.Email, ErrAlreadyExists)
	}
	user.ID = newMemoryID()
	user.CreatedAt = stamp(user.CreatedAt)
	user.UpdatedAt = stamp(user.UpdatedAt)
	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, userID string) (*models.User, error) {
	if err := parseMemoryID(userID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", email, ErrNotFound)
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *memoryUserRepository) snapshot() []*models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		c := *u
		users = append(users, &c)
	}
	return users
}

func (r *memoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	users := r.snapshot()
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *memoryUserRepository) TopContributors(_ context.Context, limit int) ([]*models.User, error) {
	users := r.snapshot()
	sort.Slice(users, func(i, j int) bool { return contributorLess(users[i], users[j]) })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *memoryUserRepository) mutate(key string, byEmail bool, fn func(u *models.User)) error {
	if !byEmail {
		if err := parseMemoryID(key); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := key
	if byEmail {
		var ok bool
		if id, ok = r.byEmail[models.NormalizeEmail(key)]; !ok {
			return fmt.Errorf("user '%s': %w", key, ErrNotFound)
		}
	}
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user '%s': %w", key, ErrNotFound)
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryUserRepository) SetPremium(_ context.Context, userID string, premium bool) error {
	return r.mutate(userID, false, func(u *models.User) { u.IsPremium = premium })
}

func (r *memoryUserRepository) SetPremiumByEmail(_ context.Context, email string, premium bool) error {
	return r.mutate(email, true, func(u *models.User) { u.IsPremium = premium })
}

func (r *memoryUserRepository) SetRole(_ context.Context, userID string, role models.Role) error {
	return r.mutate(userID, false, func(u *models.User) { u.Role = role })
}

func (r *memoryUserRepository) IncrementLessonsCount(_ context.Context, email string, delta int64) error {
	return r.mutate(email, true, func(u *models.User) { u.LessonsCount += delta })
}

type memoryLesson struct {
	lesson models.Lesson
	seq    uint64
}

type memoryLessonRepository struct {
	mu   sync.RWMutex
	seq  uint64
	byID map[string]*memoryLesson
}

func copyLesson(l *models.Lesson) *models.Lesson {
	c := *l
	c.Likes = append([]string{}, l.Likes...)
	return &c
}

func (r *memoryLessonRepository) Create(_ context.Context, lesson *models.Lesson) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lesson.ID = newMemoryID()
	lesson.CreatedAt = stamp(lesson.CreatedAt)
	if lesson.Likes == nil {
		lesson.Likes = []string{}
	}
	r.seq++
	r.byID[lesson.ID] = &memoryLesson{lesson: *copyLesson(lesson), seq: r.seq}
	return lesson.ID, nil
}

func (r *memoryLessonRepository) GetByID(_ context.Context, lessonID string) (*models.Lesson, error) {
	if err := parseMemoryID(lessonID); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[lessonID]
	if !ok {
		return nil, fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
	}
	return copyLesson(&l.lesson), nil
}

func (r *memoryLessonRepository) List(_ context.Context, filter LessonFilter) ([]*models.Lesson, error) {
	r.mu.RLock()
	matched := make([]*memoryLesson, 0, len(r.byID))
	for _, l := range r.byID {
		if filter.Category != "" && l.lesson.Category != filter.Category {
			continue
		}
		if filter.CreatorName != "" && l.lesson.User.Name != filter.CreatorName {
			continue
		}
		matched = append(matched, &memoryLesson{lesson: *copyLesson(&l.lesson), seq: l.seq})
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.lesson.CreatedAt.Equal(b.lesson.CreatedAt) {
			return a.lesson.CreatedAt.After(b.lesson.CreatedAt)
		}
		return a.seq > b.seq
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	lessons := make([]*models.Lesson, len(matched))
	for i, l := range matched {
		lessons[i] = &l.lesson
	}
	return lessons, nil
}

func (r *memoryLessonRepository) Delete(_ context.Context, lessonID string) error {
	if err := parseMemoryID(lessonID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[lessonID]; !ok {
		return fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
	}
	delete(r.byID, lessonID)
	return nil
}

func (r *memoryLessonRepository) AddLike(_ context.Context, lessonID, likerID string) error {
	if err := parseMemoryID(lessonID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[lessonID]
	if !ok {
		return fmt.Errorf("lesson '%s': %w", lessonID, ErrNotFound)
	}
	for _, id := range l.lesson.Likes {
		if id == likerID {
			return nil
		}
	}
	l.lesson.Likes = append(l.lesson.Likes, likerID)
	return nil
}

type memoryPaymentRepository struct {
	mu        sync.RWMutex
	bySession map[string]*models.Payment
}

func (r *memoryPaymentRepository) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySession[payment.SessionID]; ok {
		return fmt.Errorf("payment for session '%s': %w", payment.SessionID, ErrAlreadyExists)
	}
	payment.ID = newMemoryID()
	payment.CreatedAt = stamp(payment.CreatedAt)
	stored := *payment
	r.bySession[payment.SessionID] = &stored
	return nil
}

func (r *memoryPaymentRepository) GetBySessionID(_ context.Context, sessionID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bySession[sessionID]
	if !ok {
		return nil, fmt.Errorf("payment for session '%s': %w", sessionID, ErrNotFound)
	}
	c := *p
	return &c, nil
}

type memoryReportRepository struct {
	mu    sync.RWMutex
	byKey map[string]*models.Report
}

func (r *memoryReportRepository) Create(_ context.Context, report *models.Report) error {
	report.ReporterEmail = models.NormalizeEmail(report.ReporterEmail)
	key := reportKey(report.LessonID, report.ReporterEmail)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("report on lesson '%s' by '%s': %w", report.LessonID, report.ReporterEmail, ErrAlreadyExists)
	}
	report.ID = key
	report.CreatedAt = stamp(report.CreatedAt)
	stored := *report
	r.byKey[key] = &stored
	return nil
}

func (r *memoryReportRepository) List(_ context.Context) ([]*models.Report, error) {
	r.mu.RLock()
	reports := make([]*models.Report, 0, len(r.byKey))
	for _, rep := range r.byKey {
		c := *rep
		reports = append(reports, &c)
	}
	r.mu.RUnlock()
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
	return reports, nil
}

// contributorLess orders by lessonsCount desc, createdAt asc, ID asc.
func contributorLess(a, b *models.User) bool {
	if a.LessonsCount != b.LessonsCount {
		return a.LessonsCount > b.LessonsCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
