package core

import (
	"errors"
	"fmt"

	"lifeledger-backend-go/internal/db"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrInvalidID      = errors.New("invalid id")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failed")

	// ErrDuplicateReport is returned when the same reporter reports the same lesson twice.
	ErrDuplicateReport = errors.New("lesson already reported by this user")

	ErrCheckoutSessionNotFound = errors.New("checkout session not found")
	ErrPaymentProvider         = errors.New("payment provider request failed")
	// ErrPaymentNotCompleted is returned by verification when the session is not paid.
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// translate maps repository sentinels onto domain sentinels. notFound is the
// domain error for a missing document of the caller's kind.
func translate(err error, notFound error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %s", notFound, msg)
	case errors.Is(err, db.ErrInvalidID):
		return fmt.Errorf("%w: %s", ErrInvalidID, msg)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
