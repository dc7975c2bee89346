package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/models"
)

func newBilling(f *fixture, gw CheckoutGateway) BillingService {
	offer := DefaultPremiumOffer("bdt", 150000, "http://localhost:5173/")
	return NewBillingService(gw, f.store.Users, f.store.Payments, offer, f.events, zap.NewNop())
}

func paidSession(id, email string) *models.CheckoutSession {
	return &models.CheckoutSession{
		ID:              id,
		PaymentStatus:   "paid",
		CustomerEmail:   email,
		AmountTotal:     150000,
		Currency:        "bdt",
		PaymentIntentID: "pi_" + id,
	}
}

func TestCreateCheckoutSessionUsesOffer(t *testing.T) {
	f := newFixture()
	var got CheckoutParams
	svc := newBilling(f, &fakeGateway{
		createFn: func(_ context.Context, p CheckoutParams) (*models.CheckoutSession, error) {
			got = p
			return &models.CheckoutSession{ID: "cs_1", URL: "https://pay/cs_1"}, nil
		},
	})

	url, err := svc.CreateCheckoutSession(context.Background(), " User@Example.com ")
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if url != "https://pay/cs_1" {
		t.Errorf("url = %q", url)
	}
	if got.CustomerEmail != "user@example.com" || got.Metadata["userEmail"] != "user@example.com" {
		t.Errorf("email params = %q / %v", got.CustomerEmail, got.Metadata)
	}
	if got.UnitAmount != 150000 || got.Currency != "bdt" {
		t.Errorf("price = %d %s", got.UnitAmount, got.Currency)
	}
	if got.SuccessURL != "http://localhost:5173/payments/payment-success?session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("success url = %q", got.SuccessURL)
	}
	if got.CancelURL != "http://localhost:5173/payments/payment-cancel" {
		t.Errorf("cancel url = %q", got.CancelURL)
	}
	if got.ProductName != "LifeLedger Premium Subscription" {
		t.Errorf("product = %q", got.ProductName)
	}

	if _, err := svc.CreateCheckoutSession(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty email error = %v, want ErrValidation", err)
	}
}

func TestVerifyPaymentTwiceRecordsOnePayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.mustUser("user@example.com", models.RoleUser)
	svc := newBilling(f, &fakeGateway{
		getFn: func(_ context.Context, id string) (*models.CheckoutSession, error) {
			return paidSession(id, "user@example.com"), nil
		},
	})

	for i := 0; i < 2; i++ {
		v, err := svc.VerifyPayment(ctx, "sess_123")
		if err != nil {
			t.Fatalf("VerifyPayment #%d: %v", i+1, err)
		}
		if !v.Success || !v.IsPremium || v.PaymentStatus != "paid" {
			t.Errorf("verification #%d = %+v", i+1, v)
		}
	}

	u, _ := f.store.Users.GetByEmail(ctx, "user@example.com")
	if !u.IsPremium {
		t.Errorf("user is not premium after verification")
	}
	p, err := f.store.Payments.GetBySessionID(ctx, "sess_123")
	if err != nil {
		t.Fatalf("payment not recorded: %v", err)
	}
	if p.Amount != 1500 || p.PaymentStatus != models.PaymentStatusCompleted || p.PaymentIntentID != "pi_sess_123" {
		t.Errorf("payment = %+v", p)
	}
	if err := f.store.Payments.Create(ctx, &models.Payment{SessionID: "sess_123"}); err == nil {
		t.Errorf("a second payment for sess_123 could be stored")
	}
	if f.queue.count() != 1 {
		t.Errorf("published %d events, want 1 payment.completed", f.queue.count())
	}
}

func TestVerifyPaymentCreatesMissingPayer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := newBilling(f, &fakeGateway{
		getFn: func(_ context.Context, id string) (*models.CheckoutSession, error) {
			s := paidSession(id, "")
			s.Metadata = map[string]string{"userEmail": "New@x.io"}
			return s, nil
		},
	})

	if _, err := svc.VerifyPayment(ctx, "sess_9"); err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	u, err := f.store.Users.GetByEmail(ctx, "new@x.io")
	if err != nil || !u.IsPremium {
		t.Errorf("payer record = (%v, %v), want premium user", u, err)
	}
}

func TestVerifyPaymentNotPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := newBilling(f, &fakeGateway{
		getFn: func(_ context.Context, id string) (*models.CheckoutSession, error) {
			return &models.CheckoutSession{ID: id, PaymentStatus: "unpaid", CustomerEmail: "u@x.io"}, nil
		},
	})

	v, err := svc.VerifyPayment(ctx, "sess_open")
	if !errors.Is(err, ErrPaymentNotCompleted) {
		t.Fatalf("error = %v, want ErrPaymentNotCompleted", err)
	}
	if v == nil || v.Success || v.IsPremium || v.PaymentStatus != "unpaid" {
		t.Errorf("verification = %+v", v)
	}
	if _, err := f.store.Payments.GetBySessionID(ctx, "sess_open"); err == nil {
		t.Errorf("unpaid session produced a payment record")
	}
}

func TestVerifyPaymentErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := newBilling(f, &fakeGateway{
		getFn: func(_ context.Context, id string) (*models.CheckoutSession, error) {
			switch {
			case strings.HasPrefix(id, "missing"):
				return nil, fmt.Errorf("%w: %s", ErrCheckoutSessionNotFound, id)
			case strings.HasPrefix(id, "noemail"):
				return paidSession(id, ""), nil
			default:
				return nil, fmt.Errorf("%w: boom", ErrPaymentProvider)
			}
		},
	})

	if _, err := svc.VerifyPayment(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty id error = %v, want ErrValidation", err)
	}
	if _, err := svc.VerifyPayment(ctx, "missing_1"); !errors.Is(err, ErrCheckoutSessionNotFound) {
		t.Errorf("missing session error = %v, want ErrCheckoutSessionNotFound", err)
	}
	if _, err := svc.VerifyPayment(ctx, "down_1"); !errors.Is(err, ErrPaymentProvider) {
		t.Errorf("provider failure error = %v, want ErrPaymentProvider", err)
	}
	if _, err := svc.VerifyPayment(ctx, "noemail_1"); !errors.Is(err, ErrPaymentProvider) {
		t.Errorf("paid session without email error = %v, want ErrPaymentProvider", err)
	}
}

func TestVerifyPaymentZeroDecimalCurrency(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sess := paidSession("cs_jpy", "buyer@x.io")
	sess.AmountTotal = 3000
	sess.Currency = "jpy"
	svc := newBilling(f, &fakeGateway{
		getFn: func(context.Context, string) (*models.CheckoutSession, error) { return sess, nil },
	})

	if _, err := svc.VerifyPayment(ctx, "cs_jpy"); err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	p, err := f.store.Payments.GetBySessionID(ctx, "cs_jpy")
	if err != nil {
		t.Fatalf("GetBySessionID: %v", err)
	}
	if p.Amount != 3000 || p.Currency != "jpy" {
		t.Errorf("payment = %v %s, want 3000 jpy", p.Amount, p.Currency)
	}
}
