package core

import (
	"fmt"

	"lifeledger-backend-go/internal/models"
)

// Principal is the verified caller as seen by authorization checks.
// Role is empty when the caller has no user record.
type Principal struct {
	Email string
	Role  models.Role
}

// Predicate returns nil when p is allowed, or an error wrapping ErrForbidden.
type Predicate func(p Principal) error

// IsAdmin passes for principals holding the admin role.
func IsAdmin() Predicate {
	return func(p Principal) error {
		if p.Role == models.RoleAdmin {
			return nil
		}
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
}

// IsSelf passes when the principal's email matches email after normalization.
func IsSelf(email string) Predicate {
	want := models.NormalizeEmail(email)
	return func(p Principal) error {
		if want != "" && models.NormalizeEmail(p.Email) == want {
			return nil
		}
		return fmt.Errorf("%w: caller is not %s", ErrForbidden, want)
	}
}

// AnyOf passes when at least one of preds passes. With no predicates it always fails.
func AnyOf(preds ...Predicate) Predicate {
	return func(p Principal) error {
		for _, pred := range preds {
			if pred(p) == nil {
				return nil
			}
		}
		return fmt.Errorf("%w: no authorization rule matched", ErrForbidden)
	}
}

// Authorize runs every predicate and returns the first failure.
func Authorize(p Principal, preds ...Predicate) error {
	for _, pred := range preds {
		if err := pred(p); err != nil {
			return err
		}
	}
	return nil
}
