package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
)

// PrincipalResolver looks up the stored role for a verified email.
// core.UserService satisfies it.
type PrincipalResolver interface {
	Principal(ctx context.Context, email string) (core.Principal, error)
}

// RequireAdmin admits only admins. It must run after AuthMiddleware.VerifyToken.
func RequireAdmin(resolver PrincipalResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := UserEmail(c)
		if !ok {
			logger.Error("RequireAdmin reached without a verified email; check route wiring", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}

		principal, err := resolver.Principal(c.Request.Context(), email)
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden access"})
			return
		case err != nil:
			logger.Error("Failed to resolve principal", zap.String("email", email), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}

		if err := core.Authorize(principal, core.IsAdmin()); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden access"})
			return
		}
		c.Next()
	}
}
