package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lifeledger-backend-go/internal/models"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, created, err := f.users.GetOrCreate(ctx, models.CreateUserRequest{Email: "Ada@Example.com", DisplayName: "Ada"})
	if err != nil || !created {
		t.Fatalf("first GetOrCreate = (%v, %v), want created", created, err)
	}
	second, created, err := f.users.GetOrCreate(ctx, models.CreateUserRequest{Email: "ada@example.com", DisplayName: "Other"})
	if err != nil || created {
		t.Fatalf("second GetOrCreate = (%v, %v), want existing", created, err)
	}
	if first.ID != second.ID || second.DisplayName != "Ada" {
		t.Errorf("second call returned %+v, want the original record", second)
	}
	if second.Role != models.RoleUser {
		t.Errorf("role = %q, want user", second.Role)
	}

	all, _ := f.users.ListAll(ctx)
	if len(all) != 1 {
		t.Errorf("stored %d users, want 1", len(all))
	}
}

func TestGetOrCreateConcurrentFirstSignIn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, c, err := f.users.GetOrCreate(ctx, models.CreateUserRequest{Email: "race@x.io"})
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			if c {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
}

func TestGetOrCreateRequiresEmail(t *testing.T) {
	f := newFixture()
	_, _, err := f.users.GetOrCreate(context.Background(), models.CreateUserRequest{Email: "  "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestGetByEmailSelfOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.mustUser("alice@x.io", models.RoleUser)

	if _, err := f.users.GetByEmail(ctx, "bob@x.io", "alice@x.io"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other caller error = %v, want ErrForbidden", err)
	}
	// Forbidden even when the target does not exist: no lookup happens.
	if _, err := f.users.GetByEmail(ctx, "bob@x.io", "nobody@x.io"); !errors.Is(err, ErrForbidden) {
		t.Errorf("other caller, missing target error = %v, want ErrForbidden", err)
	}
	if _, err := f.users.GetByEmail(ctx, "nobody@x.io", "nobody@x.io"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("self missing error = %v, want ErrUserNotFound", err)
	}
	u, err := f.users.GetByEmail(ctx, "ALICE@x.io", "alice@x.io")
	if err != nil || u.Email != "alice@x.io" {
		t.Errorf("self lookup = (%v, %v)", u, err)
	}
}

func TestSetPremiumGrantAdminOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.mustUser("alice@x.io", models.RoleUser)
	f.mustUser("bob@x.io", models.RoleUser)
	f.mustUser("root@x.io", models.RoleAdmin)

	if _, err := f.users.SetPremium(ctx, "bob@x.io", alice.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("bob setting alice premium error = %v, want ErrForbidden", err)
	}
	got, _ := f.store.Users.GetByID(ctx, alice.ID)
	if got.IsPremium {
		t.Fatalf("forbidden call changed the record")
	}

	if _, err := f.users.SetPremium(ctx, "alice@x.io", alice.ID, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("self grant error = %v, want ErrForbidden", err)
	}
	if got, _ := f.store.Users.GetByID(ctx, alice.ID); got.IsPremium {
		t.Fatalf("self grant changed the record")
	}

	if u, err := f.users.SetPremium(ctx, "root@x.io", alice.ID, true); err != nil || !u.IsPremium {
		t.Errorf("admin grant = (%v, %v)", u, err)
	}
	if _, err := f.users.SetPremium(ctx, "bob@x.io", alice.ID, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("bob clearing alice premium error = %v, want ErrForbidden", err)
	}
	if u, err := f.users.SetPremium(ctx, "alice@x.io", alice.ID, false); err != nil || u.IsPremium {
		t.Errorf("self clear = (%v, %v)", u, err)
	}
	if u, err := f.users.SetPremium(ctx, "root@x.io", alice.ID, false); err != nil || u.IsPremium {
		t.Errorf("admin clear = (%v, %v)", u, err)
	}
	if _, err := f.users.SetPremium(ctx, "root@x.io", "not-an-id", true); !errors.Is(err, ErrInvalidID) {
		t.Errorf("malformed id error = %v, want ErrInvalidID", err)
	}
	if _, err := f.users.SetPremium(ctx, "root@x.io", "6f1c6a2e-8a0b-4d7e-9c43-3f2b1a0e9d11", true); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown id error = %v, want ErrUserNotFound", err)
	}
}

func TestRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.mustUser("alice@x.io", models.RoleUser)
	f.mustUser("root@x.io", models.RoleAdmin)

	if role, err := f.users.GetRole(ctx, "alice@x.io", "alice@x.io"); err != nil || role != models.RoleUser {
		t.Errorf("self GetRole = (%q, %v)", role, err)
	}
	if role, err := f.users.GetRole(ctx, "root@x.io", "alice@x.io"); err != nil || role != models.RoleUser {
		t.Errorf("admin GetRole = (%q, %v)", role, err)
	}
	if _, err := f.users.GetRole(ctx, "alice@x.io", "root@x.io"); !errors.Is(err, ErrForbidden) {
		t.Errorf("user reading admin role error = %v, want ErrForbidden", err)
	}

	if _, err := f.users.SetRole(ctx, alice.ID, "superuser"); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid role error = %v, want ErrValidation", err)
	}
	u, err := f.users.SetRole(ctx, alice.ID, models.RoleAdmin)
	if err != nil || u.Role != models.RoleAdmin {
		t.Errorf("SetRole = (%v, %v)", u, err)
	}
	p, err := f.users.Principal(ctx, "alice@x.io")
	if err != nil || p.Role != models.RoleAdmin {
		t.Errorf("Principal = (%+v, %v)", p, err)
	}
	if _, err := f.users.Principal(ctx, "ghost@x.io"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Principal unknown error = %v, want ErrUserNotFound", err)
	}
}

func TestTopContributorsCappedAtFive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	emails := []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io", "e@x.io", "f@x.io", "g@x.io"}
	for i, e := range emails {
		f.mustUser(e, models.RoleUser)
		for j := 0; j < i; j++ {
			f.mustLesson(e, e, "life")
		}
	}

	top, err := f.users.TopContributors(ctx)
	if err != nil {
		t.Fatalf("TopContributors: %v", err)
	}
	if len(top) != TopContributorsLimit {
		t.Fatalf("got %d, want %d", len(top), TopContributorsLimit)
	}
	if top[0].Email != "g@x.io" || top[0].LessonsCount != 6 {
		t.Errorf("top[0] = %s (%d), want g@x.io (6)", top[0].Email, top[0].LessonsCount)
	}
	for i := 1; i < len(top); i++ {
		if top[i].LessonsCount > top[i-1].LessonsCount {
			t.Errorf("not sorted by lessonsCount desc at %d", i)
		}
	}
}
