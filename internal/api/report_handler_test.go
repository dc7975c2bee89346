package api

import (
	"net/http"
	"sync"
	"testing"

	"lifeledger-backend-go/internal/models"
)

func TestCreateReport(t *testing.T) {
	s := newTestServer(t)
	l := s.seedLesson(t, "a@x.io", "Alice", "growth")

	w := s.do(http.MethodPost, "/reports/"+l.ID, "", map[string]string{"reporterEmail": "R@x.io", "reason": "spam"})
	expectStatus(t, w, http.StatusCreated)
	var r models.Report
	decode(t, w, &r)
	if r.LessonID != l.ID || r.LessonTitle != l.Title || r.ReporterEmail != "r@x.io" {
		t.Errorf("unexpected report: %+v", r)
	}

	w = s.do(http.MethodPost, "/reports/"+l.ID, "", map[string]string{"reporterEmail": "r@x.io", "reason": "again"})
	expectStatus(t, w, http.StatusConflict)

	expectStatus(t, s.do(http.MethodPost, "/reports/"+l.ID, "", map[string]string{"reason": "anon"}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPost, "/reports/"+unknownID, "", map[string]string{"reporterEmail": "r@x.io"}), http.StatusNotFound)
}

func TestCreateReport_ConcurrentDuplicates(t *testing.T) {
	s := newTestServer(t)
	l := s.seedLesson(t, "a@x.io", "Alice", "growth")

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.do(http.MethodPost, "/reports/"+l.ID, "", map[string]string{"reporterEmail": "r@x.io"}).Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
}

func TestListReports_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "admin@x.io", models.RoleAdmin)
	s.seedUser(t, "plain@x.io", models.RoleUser)
	l := s.seedLesson(t, "a@x.io", "Alice", "growth")
	expectStatus(t, s.do(http.MethodPost, "/reports/"+l.ID, "", map[string]string{"reporterEmail": "r@x.io"}), http.StatusCreated)

	expectStatus(t, s.do(http.MethodGet, "/reports", "plain@x.io", nil), http.StatusForbidden)

	w := s.do(http.MethodGet, "/reports", "admin@x.io", nil)
	expectStatus(t, w, http.StatusOK)
	var reports []models.Report
	decode(t, w, &reports)
	if len(reports) != 1 {
		t.Errorf("len(reports) = %d, want 1", len(reports))
	}
}
