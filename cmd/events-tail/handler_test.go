package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lifeledger-backend-go/internal/core"
)

type fakeSender struct {
	SendFunc func(recipient, subject, body string) error
	calls    int
}

func (f *fakeSender) SendEmail(recipient, subject, body string) error {
	f.calls++
	if f.SendFunc != nil {
		return f.SendFunc(recipient, subject, body)
	}
	return nil
}

// capture publishes through a real EventPublisher so the handler sees the wire format.
type capture struct{ bodies [][]byte }

func (c *capture) Publish(_ context.Context, _ string, body []byte) error {
	c.bodies = append(c.bodies, body)
	return nil
}
func (c *capture) Consume(context.Context, string, func([]byte)) error { return nil }
func (c *capture) Close() error                                        { return nil }

func publish(t *testing.T, eventType string, data interface{}) []byte {
	t.Helper()
	c := &capture{}
	core.NewEventPublisher(c, "q", zap.NewNop()).Publish(context.Background(), eventType, data)
	if len(c.bodies) != 1 {
		t.Fatalf("published %d events, want 1", len(c.bodies))
	}
	return c.bodies[0]
}

func TestHandleSendsReceiptForPayments(t *testing.T) {
	var gotTo, gotBody string
	sender := &fakeSender{SendFunc: func(recipient, _, body string) error {
		gotTo, gotBody = recipient, body
		return nil
	}}
	h := &eventHandler{logger: zap.NewNop(), receipts: sender}

	h.handle(publish(t, core.EventPaymentCompleted, map[string]interface{}{
		"sessionId": "cs_1", "email": "buyer@x.io", "amount": 1500.0, "currency": "bdt",
	}))

	if sender.calls != 1 || gotTo != "buyer@x.io" {
		t.Fatalf("calls = %d, to = %q", sender.calls, gotTo)
	}
	if !strings.Contains(gotBody, "1500.00 BDT") || !strings.Contains(gotBody, "cs_1") {
		t.Errorf("unexpected receipt body: %s", gotBody)
	}
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	obs, logs := observer.New(zapcore.InfoLevel)
	h := &eventHandler{logger: zap.New(obs), receipts: sender}

	h.handle(publish(t, "lesson.created", map[string]string{"lessonId": "l1"}))
	h.handle([]byte("not json"))

	if sender.calls != 0 {
		t.Errorf("sender called %d times", sender.calls)
	}
	if n := logs.FilterMessage("Event received").Len(); n != 1 {
		t.Errorf("logged %d events, want 1", n)
	}
	if n := logs.FilterMessage("Skipping malformed event").Len(); n != 1 {
		t.Errorf("logged %d malformed events, want 1", n)
	}
}

func TestHandleWithoutMailer(t *testing.T) {
	h := &eventHandler{logger: zap.NewNop()}
	h.handle(publish(t, core.EventPaymentCompleted, map[string]interface{}{"email": "buyer@x.io"}))
}

func TestHandleLogsSendFailure(t *testing.T) {
	sender := &fakeSender{SendFunc: func(string, string, string) error { return errors.New("smtp down") }}
	obs, logs := observer.New(zapcore.InfoLevel)
	h := &eventHandler{logger: zap.New(obs), receipts: sender}

	h.handle(publish(t, core.EventPaymentCompleted, map[string]interface{}{"email": "buyer@x.io", "sessionId": "cs_2"}))

	if n := logs.FilterMessage("Failed to send receipt").Len(); n != 1 {
		t.Errorf("failure logged %d times, want 1", n)
	}
}

func TestReceiptBodyUsesCurrencyExponent(t *testing.T) {
	if got := receiptBody(paymentCompleted{Amount: 3000, Currency: "jpy", SessionID: "cs_3"}); !strings.Contains(got, "3000 JPY") {
		t.Errorf("jpy receipt = %s", got)
	}
	if got := receiptBody(paymentCompleted{Amount: 19.5, Currency: "usd"}); !strings.Contains(got, "19.50 USD") {
		t.Errorf("usd receipt = %s", got)
	}
}
