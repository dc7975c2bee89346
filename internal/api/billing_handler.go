package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

// BillingHandler handles premium checkout endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP status codes and ErrorResponse.
func (h *BillingHandler) mapBillingErrorToStatus(c *gin.Context, op string, err error) {
	if status, resp, ok := mapCommonError(err); ok {
		c.JSON(status, resp)
		return
	}
	switch {
	case errors.Is(err, core.ErrCheckoutSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Checkout session not found"})
	case errors.Is(err, core.ErrPaymentProvider):
		h.logger.Warn(op+" payment provider error", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Payment provider error",
			Details: "Could not complete the operation with the payment provider.",
		})
	default:
		respondInternal(c, h.logger, op, err)
	}
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), req.Email)
	if err != nil {
		h.mapBillingErrorToStatus(c, "CreateCheckoutSession", err)
		return
	}
	c.JSON(http.StatusOK, CheckoutResponse{URL: url})
}

// VerifyPaymentSuccess handles PATCH /verify-payment-success?session_id=.
// A paid session answers 200; an unpaid one answers 402 with the same body shape.
func (h *BillingHandler) VerifyPaymentSuccess(c *gin.Context) {
	result, err := h.billingService.VerifyPayment(c.Request.Context(), c.Query("session_id"))
	if errors.Is(err, core.ErrPaymentNotCompleted) && result != nil {
		c.JSON(http.StatusPaymentRequired, result)
		return
	}
	if err != nil {
		h.mapBillingErrorToStatus(c, "VerifyPaymentSuccess", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
