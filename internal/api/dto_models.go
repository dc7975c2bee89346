package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/middleware"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RoleResponse is returned by GET /users/:email/roles.
type RoleResponse struct {
	Role string `json:"role"`
}

// CheckoutResponse is returned by POST /create-checkout-session.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// mapCommonError handles the sentinels shared by every handler. ok is false for
// errors the caller must classify itself.
func mapCommonError(err error) (int, ErrorResponse, bool) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()}, true
	case errors.Is(err, core.ErrInvalidID):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid id format"}, true
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "Forbidden access"}, true
	}
	return 0, ErrorResponse{}, false
}

// respondInternal logs err and answers with a generic 500.
func respondInternal(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Error(op+" failed", zap.Error(err), zap.String("request_id", c.GetString(middleware.ContextRequestID)))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// actorEmail returns the verified caller email or answers 401.
func actorEmail(c *gin.Context) (string, bool) {
	email, ok := middleware.UserEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: user email not found in context"})
	}
	return email, ok
}

// bindJSON decodes the request body or answers 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return false
	}
	return true
}
