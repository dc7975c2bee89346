package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

// receiptSender is satisfied by *mailer.Mailer.
type receiptSender interface {
	SendEmail(recipient, subject, body string) error
}

// envelope mirrors core.Event with the payload left undecoded.
type envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

type paymentCompleted struct {
	SessionID string  `json:"sessionId"`
	Email     string  `json:"email"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// eventHandler logs every event and mails a receipt for completed payments.
// receipts may be nil.
type eventHandler struct {
	logger   *zap.Logger
	receipts receiptSender
}

func (h *eventHandler) handle(body []byte) {
	var evt envelope
	if err := json.Unmarshal(body, &evt); err != nil {
		h.logger.Warn("Skipping malformed event", zap.ByteString("body", body), zap.Error(err))
		return
	}
	h.logger.Info("Event received",
		zap.String("event_id", evt.ID),
		zap.String("type", evt.Type),
		zap.Time("occurred_at", evt.OccurredAt),
		zap.ByteString("data", evt.Data),
	)

	if evt.Type != core.EventPaymentCompleted || h.receipts == nil {
		return
	}
	var p paymentCompleted
	if err := json.Unmarshal(evt.Data, &p); err != nil || p.Email == "" {
		h.logger.Warn("payment.completed event without a payer", zap.String("event_id", evt.ID), zap.Error(err))
		return
	}
	if err := h.receipts.SendEmail(p.Email, "Your LifeLedger Premium receipt", receiptBody(p)); err != nil {
		h.logger.Error("Failed to send receipt", zap.String("event_id", evt.ID), zap.String("email", p.Email), zap.Error(err))
		return
	}
	h.logger.Info("Receipt sent", zap.String("session_id", p.SessionID), zap.String("email", p.Email))
}

func receiptBody(p paymentCompleted) string {
	return fmt.Sprintf("<html><body>"+
		"<p>Thank you for upgrading to LifeLedger Premium.</p>"+
		"<p>Amount: %.*f %s</p>"+
		"<p>Reference: %s</p>"+
		"</body></html>", models.CurrencyExponent(p.Currency), p.Amount, strings.ToUpper(p.Currency), p.SessionID)
}
