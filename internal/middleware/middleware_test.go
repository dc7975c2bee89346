package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/config"
	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	calls    int
	verifyFn func(ctx context.Context, token string) (*auth.Token, error)
}

func (f *fakeVerifier) VerifyIDToken(ctx context.Context, token string) (*auth.Token, error) {
	f.calls++
	return f.verifyFn(ctx, token)
}

func tokenFor(uid, email string) *auth.Token {
	claims := map[string]interface{}{}
	if email != "" {
		claims["email"] = email
	}
	return &auth.Token{UID: uid, Claims: claims}
}

type fakeResolver struct {
	principalFn func(ctx context.Context, email string) (core.Principal, error)
}

func (f *fakeResolver) Principal(ctx context.Context, email string) (core.Principal, error) {
	return f.principalFn(ctx, email)
}

func TestVerifyToken(t *testing.T) {
	verifier := &fakeVerifier{verifyFn: func(_ context.Context, token string) (*auth.Token, error) {
		switch token {
		case "good":
			return tokenFor("uid-1", "Ada@Example.com"), nil
		case "no-email":
			return tokenFor("uid-2", ""), nil
		default:
			return nil, errors.New("token expired")
		}
	}}
	mw := NewAuthMiddleware(verifier, zap.NewNop())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalls  int
	}{
		{"missing header", "", http.StatusUnauthorized, 0},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, 0},
		{"too many parts", "Bearer a b", http.StatusUnauthorized, 0},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, 1},
		{"token without email", "Bearer no-email", http.StatusUnauthorized, 1},
		{"valid token", "Bearer good", http.StatusOK, 1},
		{"lowercase scheme", "bearer good", http.StatusOK, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier.calls = 0
			handlerRan := false
			r := gin.New()
			r.GET("/p", mw.VerifyToken(), func(c *gin.Context) {
				handlerRan = true
				email, _ := UserEmail(c)
				c.JSON(http.StatusOK, gin.H{"uid": c.GetString(ContextUserID), "email": email})
			})

			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if verifier.calls != tt.wantCalls {
				t.Errorf("verifier calls = %d, want %d", verifier.calls, tt.wantCalls)
			}
			if handlerRan != (tt.wantStatus == http.StatusOK) {
				t.Errorf("handlerRan = %v", handlerRan)
			}
			if tt.wantStatus == http.StatusOK && w.Body.String() != `{"email":"ada@example.com","uid":"uid-1"}` {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	resolver := &fakeResolver{principalFn: func(_ context.Context, email string) (core.Principal, error) {
		switch email {
		case "root@x.io":
			return core.Principal{Email: email, Role: models.RoleAdmin}, nil
		case "user@x.io":
			return core.Principal{Email: email, Role: models.RoleUser}, nil
		case "broken@x.io":
			return core.Principal{}, errors.New("db down")
		default:
			return core.Principal{}, core.ErrUserNotFound
		}
	}}

	tests := []struct {
		name       string
		email      string
		wantStatus int
	}{
		{"admin", "root@x.io", http.StatusOK},
		{"plain user", "user@x.io", http.StatusForbidden},
		{"unknown user", "ghost@x.io", http.StatusForbidden},
		{"store failure", "broken@x.io", http.StatusInternalServerError},
		{"no verified email", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", func(c *gin.Context) {
				if tt.email != "" {
					c.Set(ContextUserEmail, tt.email)
				}
				c.Next()
			}, RequireAdmin(resolver, zap.NewNop()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	if generated == "" || w.Body.String() != generated {
		t.Errorf("generated id header=%q body=%q", generated, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("propagated id = %q, want abc-123", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		clientURL  string
		origin     string
		wantOrigin string
	}{
		{"open when unset", "", "http://anywhere.test", "*"},
		{"configured origin", "http://app.test/, http://admin.test", "http://admin.test", "http://admin.test"},
		{"other origin rejected", "http://app.test", "http://evil.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(&config.Config{ClientURL: tt.clientURL}))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}
