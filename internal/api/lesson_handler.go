package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

// LessonHandler handles lesson endpoints.
type LessonHandler struct {
	lessonService core.LessonService
	logger        *zap.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(ls core.LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{lessonService: ls, logger: logger}
}

func (h *LessonHandler) mapLessonErrorToStatus(c *gin.Context, op string, err error) {
	if status, resp, ok := mapCommonError(err); ok {
		c.JSON(status, resp)
		return
	}
	if errors.Is(err, core.ErrLessonNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Lesson not found"})
		return
	}
	respondInternal(c, h.logger, op, err)
}

func (h *LessonHandler) respondList(c *gin.Context, op string, lessons []*models.Lesson, err error) {
	if err != nil {
		h.mapLessonErrorToStatus(c, op, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// LatestLessons handles GET /lessons.
func (h *LessonHandler) LatestLessons(c *gin.Context) {
	lessons, err := h.lessonService.Latest(c.Request.Context())
	h.respondList(c, "LatestLessons", lessons, err)
}

// LessonsByCreator handles GET /lessons/:name.
func (h *LessonHandler) LessonsByCreator(c *gin.Context) {
	lessons, err := h.lessonService.ByCreator(c.Request.Context(), c.Param("name"))
	h.respondList(c, "LessonsByCreator", lessons, err)
}

// FilteredLessons handles GET /filtered-lessons?category=.
func (h *LessonHandler) FilteredLessons(c *gin.Context) {
	lessons, err := h.lessonService.ByCategory(c.Request.Context(), c.Query("category"))
	h.respondList(c, "FilteredLessons", lessons, err)
}

// AllLessons handles GET /all-lessons.
func (h *LessonHandler) AllLessons(c *gin.Context) {
	lessons, err := h.lessonService.All(c.Request.Context())
	h.respondList(c, "AllLessons", lessons, err)
}

// GetLesson handles GET /all-lessons/:id.
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lesson, err := h.lessonService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.mapLessonErrorToStatus(c, "GetLesson", err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// CreateLesson handles POST /lessons.
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req models.CreateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.lessonService.Create(c.Request.Context(), req)
	if err != nil {
		h.mapLessonErrorToStatus(c, "CreateLesson", err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

// DeleteLesson handles DELETE /lessons/:id. Only the creator or an admin may delete.
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	caller, ok := actorEmail(c)
	if !ok {
		return
	}
	if err := h.lessonService.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.mapLessonErrorToStatus(c, "DeleteLesson", err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Lesson deleted"})
}

// LikeLesson handles POST /lessons/:id/likes.
func (h *LessonHandler) LikeLesson(c *gin.Context) {
	var req models.LikeLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.lessonService.Like(c.Request.Context(), c.Param("id"), req.User)
	if err != nil {
		h.mapLessonErrorToStatus(c, "LikeLesson", err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}
