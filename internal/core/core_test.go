package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/db"
	"lifeledger-backend-go/internal/models"
)

// fakeGateway is a CheckoutGateway with overridable behavior.
type fakeGateway struct {
	createFn func(ctx context.Context, p CheckoutParams) (*models.CheckoutSession, error)
	getFn    func(ctx context.Context, id string) (*models.CheckoutSession, error)
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*models.CheckoutSession, error) {
	return f.createFn(ctx, p)
}

func (f *fakeGateway) GetCheckoutSession(ctx context.Context, id string) (*models.CheckoutSession, error) {
	return f.getFn(ctx, id)
}

// mapCache is an in-process cache.Cache.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}

func (c *mapCache) Close() error { return nil }

// recordingQueue captures published messages.
type recordingQueue struct {
	mu       sync.Mutex
	messages [][]byte
}

func (q *recordingQueue) Publish(_ context.Context, _ string, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, body)
	return nil
}

func (q *recordingQueue) Consume(ctx context.Context, _ string, _ func([]byte)) error {
	<-ctx.Done()
	return nil
}

func (q *recordingQueue) Close() error { return nil }

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

type fixture struct {
	store   *db.Store
	users   UserService
	lessons LessonService
	reports ReportService
	cache   *mapCache
	queue   *recordingQueue
	events  *EventPublisher
}

func newFixture() *fixture {
	logger := zap.NewNop()
	store := db.NewMemoryStore().Store()
	c := newMapCache()
	q := &recordingQueue{}
	events := NewEventPublisher(q, "test.events", logger)
	users := NewUserService(store.Users, logger)
	return &fixture{
		store:   store,
		users:   users,
		lessons: NewLessonService(store.Lessons, store.Users, users, c, time.Minute, events, logger),
		reports: NewReportService(store.Reports, store.Lessons, events, logger),
		cache:   c,
		queue:   q,
		events:  events,
	}
}

func (f *fixture) mustUser(email string, role models.Role) *models.User {
	u, _, err := f.users.GetOrCreate(context.Background(), models.CreateUserRequest{Email: email})
	if err != nil {
		panic(err)
	}
	if role != models.RoleUser {
		if u, err = f.users.SetRole(context.Background(), u.ID, role); err != nil {
			panic(err)
		}
	}
	return u
}

func (f *fixture) mustLesson(email, name, category string) *models.Lesson {
	l, err := f.lessons.Create(context.Background(), models.CreateLessonRequest{
		Title:    "On " + category,
		Category: category,
		User:     &models.LessonAuthor{Email: email, Name: name},
	})
	if err != nil {
		panic(err)
	}
	return l
}
