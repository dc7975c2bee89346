package models

import (
	"math"
	"strings"
	"time"
)

// PaymentStatusCompleted is the only status a persisted payment ever has.
const PaymentStatusCompleted = "completed"

// Payment records a verified premium purchase. SessionID is unique across the collection.
type Payment struct {
	ID              string    `json:"id" firestore:"-" bson:"-"`
	Email           string    `json:"email" firestore:"email" bson:"email"`
	Amount          float64   `json:"amount" firestore:"amount" bson:"amount"` // Major currency units
	Currency        string    `json:"currency,omitempty" firestore:"currency,omitempty" bson:"currency,omitempty"`
	PaymentStatus   string    `json:"payment_status" firestore:"payment_status" bson:"payment_status"`
	SessionID       string    `json:"sessionId" firestore:"sessionId" bson:"sessionId"`
	PaymentIntentID string    `json:"paymentIntentId,omitempty" firestore:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp" bson:"createdAt"`
}

// CheckoutSession is the payment processor's view of a purchase. It is never persisted.
type CheckoutSession struct {
	ID              string `json:"id"`
	URL             string `json:"url,omitempty"`
	PaymentStatus   string `json:"paymentStatus"`
	CustomerEmail   string `json:"customerEmail,omitempty"`
	AmountTotal     int64  `json:"amountTotal"` // Minor currency units
	Currency        string `json:"currency,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`

	Metadata             map[string]string `json:"metadata,omitempty"`
	CustomerDetailsEmail string            `json:"customerDetailsEmail,omitempty"`
}

// PayerEmail returns customer_email, then metadata userEmail, then the customer
// details email, normalized. Empty if none is set.
func (s *CheckoutSession) PayerEmail() string {
	for _, e := range []string{s.CustomerEmail, s.Metadata["userEmail"], s.CustomerDetailsEmail} {
		if e = NormalizeEmail(e); e != "" {
			return e
		}
	}
	return ""
}

// Paid reports whether the processor considers the session settled.
func (s *CheckoutSession) Paid() bool {
	return s != nil && s.PaymentStatus == "paid"
}

// Currencies Stripe charges without a fractional unit, and those with three decimals.
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true, "mga": true,
		"pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true}
)

// CurrencyExponent returns the number of minor-unit digits for an ISO currency code.
func CurrencyExponent(currency string) int {
	c := strings.ToLower(strings.TrimSpace(currency))
	switch {
	case zeroDecimalCurrencies[c]:
		return 0
	case threeDecimalCurrencies[c]:
		return 3
	default:
		return 2
	}
}

// MajorUnits converts an amount in minor units to major units for currency.
func MajorUnits(minor int64, currency string) float64 {
	return float64(minor) / math.Pow10(CurrencyExponent(currency))
}
