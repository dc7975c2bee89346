package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/models"
)

// sessionAPI is the subset of the Stripe checkout session client used here.
// *session.Client from stripe-go satisfies it.
type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway implements core.CheckoutGateway with Stripe Checkout.
type StripeGateway struct {
	sessions sessionAPI
	logger   *zap.Logger
}

// NewStripeGateway builds a gateway on a dedicated Stripe client, leaving the
// package-level stripe.Key untouched.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	sc := client.New(secretKey, nil)
	return &StripeGateway{sessions: sc.CheckoutSessions, logger: logger}
}

// CreateCheckoutSession opens a payment-mode session with one inline-priced line item.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p core.CheckoutParams) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(p.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.UnitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.ProductName),
						Description: stripe.String(p.ProductDescription),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.sessions.New(params)
	if err != nil {
		g.logger.Error("Stripe checkout session creation failed", zap.String("email", p.CustomerEmail), zap.Error(err))
		return nil, fmt.Errorf("%w: create checkout session: %v", core.ErrPaymentProvider, err)
	}
	return toModel(sess), nil
}

// GetCheckoutSession retrieves a session, mapping Stripe 404s to core.ErrCheckoutSessionNotFound.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && (stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing) {
			return nil, fmt.Errorf("%w: %s", core.ErrCheckoutSessionNotFound, sessionID)
		}
		g.logger.Error("Stripe checkout session retrieval failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: get checkout session: %v", core.ErrPaymentProvider, err)
	}
	return toModel(sess), nil
}

func toModel(s *stripe.CheckoutSession) *models.CheckoutSession {
	out := &models.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.CustomerDetails != nil {
		out.CustomerDetailsEmail = s.CustomerDetails.Email
	}
	return out
}
