package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/db"
	"lifeledger-backend-go/internal/models"
)

// TopContributorsLimit is the size of the top contributors board.
const TopContributorsLimit = 5

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// GetOrCreate inserts the user and falls back to a read when the email is taken,
// so concurrent first sign-ins converge on one record.
func (s *userService) GetOrCreate(ctx context.Context, req models.CreateUserRequest) (*models.User, bool, error) {
	email := models.NormalizeEmail(req.Email)
	if email == "" {
		return nil, false, fmt.Errorf("%w: email is required", ErrValidation)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		Email:       email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Role:        models.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.userRepo.Create(ctx, newUser)
	if err == nil {
		s.logger.Info("User created", zap.String("email", email), zap.String("user_id", newUser.ID))
		return newUser, true, nil
	}
	if !errors.Is(err, db.ErrAlreadyExists) {
		return nil, false, fmt.Errorf("failed to create user '%s': %w", email, err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, translate(err, ErrUserNotFound, "user '%s'", email)
	}
	return existing, false, nil
}

// GetByEmail enforces that callers only read their own record, before any lookup.
func (s *userService) GetByEmail(ctx context.Context, actorEmail, email string) (*models.User, error) {
	if err := Authorize(Principal{Email: actorEmail}, IsSelf(email)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, translate(err, ErrUserNotFound, "user '%s'", email)
	}
	return user, nil
}

func (s *userService) ListAll(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SetPremium lets an admin set or clear anyone's flag. Owners may only clear
// their own; granting premium otherwise goes through payment verification.
func (s *userService) SetPremium(ctx context.Context, actorEmail, userID string, premium bool) (*models.User, error) {
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, ErrUserNotFound, "user '%s'", userID)
	}
	actor, err := s.resolve(ctx, actorEmail)
	if err != nil {
		return nil, err
	}
	allowed := AnyOf(IsSelf(target.Email), IsAdmin())
	if premium {
		allowed = IsAdmin()
	}
	if err := Authorize(actor, allowed); err != nil {
		return nil, err
	}

	if err := s.userRepo.SetPremium(ctx, userID, premium); err != nil {
		return nil, translate(err, ErrUserNotFound, "user '%s'", userID)
	}
	target.IsPremium = premium
	s.logger.Info("User premium flag updated",
		zap.String("user_id", userID), zap.Bool("premium", premium), zap.String("actor", actor.Email))
	return target, nil
}

func (s *userService) GetRole(ctx context.Context, actorEmail, email string) (models.Role, error) {
	actor, err := s.resolve(ctx, actorEmail)
	if err != nil {
		return "", err
	}
	if err := Authorize(actor, AnyOf(IsSelf(email), IsAdmin())); err != nil {
		return "", err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", translate(err, ErrUserNotFound, "user '%s'", email)
	}
	return user.Role, nil
}

// SetRole assumes the caller was admitted by the admin gate.
func (s *userService) SetRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RoleUser, models.RoleAdmin)
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return nil, translate(err, ErrUserNotFound, "user '%s'", userID)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, ErrUserNotFound, "user '%s'", userID)
	}
	s.logger.Info("User role updated", zap.String("user_id", userID), zap.String("role", string(role)))
	return user, nil
}

func (s *userService) TopContributors(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.TopContributors(ctx, TopContributorsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top contributors: %w", err)
	}
	return users, nil
}

func (s *userService) Principal(ctx context.Context, email string) (Principal, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return Principal{}, translate(err, ErrUserNotFound, "user '%s'", email)
	}
	return Principal{Email: user.Email, Role: user.Role}, nil
}

// resolve is Principal without the not-found error: a caller with a valid
// token but no record is a principal with no role.
func (s *userService) resolve(ctx context.Context, email string) (Principal, error) {
	p, err := s.Principal(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Principal{Email: models.NormalizeEmail(email)}, nil
	}
	return p, err
}
