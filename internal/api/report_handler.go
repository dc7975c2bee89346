package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

// ReportHandler handles content report endpoints.
type ReportHandler struct {
	reportService core.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs core.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: rs, logger: logger}
}

func (h *ReportHandler) mapReportErrorToStatus(c *gin.Context, op string, err error) {
	if status, resp, ok := mapCommonError(err); ok {
		c.JSON(status, resp)
		return
	}
	switch {
	case errors.Is(err, core.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Lesson not found"})
	case errors.Is(err, core.ErrDuplicateReport):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrDuplicateReport.Error()})
	default:
		respondInternal(c, h.logger, op, err)
	}
}

// CreateReport handles POST /reports/:id.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.reportService.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.mapReportErrorToStatus(c, "CreateReport", err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports handles GET /reports (admin only).
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.List(c.Request.Context())
	if err != nil {
		h.mapReportErrorToStatus(c, "ListReports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
