package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/models"
)

// Context keys set by VerifyToken.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

// ErrorResponse mirrors api.ErrorResponse; it is duplicated here to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies an ID token. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("NewAuthMiddleware requires a TokenVerifier")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken checks the bearer token and stores the UID and normalized email in the
// Gin context. Any failure aborts with 401 before downstream handlers run.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Info("Rejected ID token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		email, _ := token.Claims["email"].(string)
		email = models.NormalizeEmail(email)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication token carries no email"})
			return
		}

		c.Set(ContextUserID, token.UID)
		c.Set(ContextUserEmail, email)
		c.Next()
	}
}

// UserEmail returns the verified email set by VerifyToken.
func UserEmail(c *gin.Context) (string, bool) {
	email := c.GetString(ContextUserEmail)
	return email, email != ""
}
