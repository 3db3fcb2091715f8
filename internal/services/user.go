package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

type UserService struct {
	store  db.Store
	logger zerolog.Logger
}

func NewUserService(store db.Store, logger zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Upsert creates or updates the profile keyed by email. The role is never
// taken from the profile; promotion goes through MakeAdmin.
func (s *UserService) Upsert(ctx context.Context, email string, profile models.User) (*models.UpdateResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	set := bson.M{"email": email}
	if name := strings.TrimSpace(profile.Name); name != "" {
		set["name"] = name
	}

	result, err := s.store.UpdateOne(ctx, db.CollUsers, bson.M{"email": email}, set, true)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to upsert user")
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return result, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.store.Find(ctx, db.CollUsers, bson.M{}, nil, &users); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// IsAdmin reports whether email belongs to an admin. An unknown email is
// not an admin and not an error.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var user models.User
	err := s.store.FindOne(ctx, db.CollUsers, bson.M{"email": email}, &user)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user.IsAdmin(), nil
}

// MakeAdmin promotes an existing user. Unknown emails match nothing.
func (s *UserService) MakeAdmin(ctx context.Context, email string) (*models.UpdateResult, error) {
	result, err := s.store.UpdateOne(ctx, db.CollUsers, bson.M{"email": email}, bson.M{"role": models.RoleAdmin}, false)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to promote user")
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	s.logger.Info().Str("email", email).Int64("matched", result.MatchedCount).Msg("user promoted to admin")
	return result, nil
}
