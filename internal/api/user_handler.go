package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

// UserHandler handles user related API endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

func (h *UserHandler) mapUserErrorToStatus(c *gin.Context, op string, err error) {
	if status, resp, ok := mapCommonError(err); ok {
		c.JSON(status, resp)
		return
	}
	if errors.Is(err, core.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
		return
	}
	respondInternal(c, h.logger, op, err)
}

// ListUsers handles GET /users (admin only).
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListAll(c.Request.Context())
	if err != nil {
		h.mapUserErrorToStatus(c, "ListUsers", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserByEmail handles GET /users/:email. Callers may only read their own record.
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	caller, ok := actorEmail(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByEmail(c.Request.Context(), caller, c.Param("email"))
	if err != nil {
		h.mapUserErrorToStatus(c, "GetUserByEmail", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /users, the upsert performed after a client sign-in.
// It answers 201 when a record was created and 200 when it already existed.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, created, err := h.userService.GetOrCreate(c.Request.Context(), req)
	if err != nil {
		h.mapUserErrorToStatus(c, "CreateUser", err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdatePremium handles PATCH /users/:id. Only status "premium" sets the flag.
func (h *UserHandler) UpdatePremium(c *gin.Context) {
	caller, ok := actorEmail(c)
	if !ok {
		return
	}
	var req models.UpdatePremiumRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.SetPremium(c.Request.Context(), caller, c.Param("id"), req.Status == "premium")
	if err != nil {
		h.mapUserErrorToStatus(c, "UpdatePremium", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserRole handles GET /users/:email/roles.
func (h *UserHandler) GetUserRole(c *gin.Context) {
	caller, ok := actorEmail(c)
	if !ok {
		return
	}
	role, err := h.userService.GetRole(c.Request.Context(), caller, c.Param("email"))
	if err != nil {
		h.mapUserErrorToStatus(c, "GetUserRole", err)
		return
	}
	c.JSON(http.StatusOK, RoleResponse{Role: string(role)})
}

// UpdateRole handles PATCH /users/:id/role (admin only).
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req models.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.SetRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.mapUserErrorToStatus(c, "UpdateRole", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// TopContributors handles GET /top-contributers.
func (h *UserHandler) TopContributors(c *gin.Context) {
	users, err := h.userService.TopContributors(c.Request.Context())
	if err != nil {
		h.mapUserErrorToStatus(c, "TopContributors", err)
		return
	}
	c.JSON(http.StatusOK, users)
}
