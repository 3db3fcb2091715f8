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

// DoctorService manages the admin-only doctor roster.
type DoctorService struct {
	store  db.Store
	logger zerolog.Logger
}

func NewDoctorService(store db.Store, logger zerolog.Logger) *DoctorService {
	return &DoctorService{store: store, logger: logger}
}

func (s *DoctorService) Add(ctx context.Context, doctor *models.Doctor) (string, error) {
	doctor.Email = strings.TrimSpace(doctor.Email)
	doctor.Name = strings.TrimSpace(doctor.Name)
	if doctor.Email == "" || doctor.Name == "" {
		return "", fmt.Errorf("%w: email and name are required", ErrInvalidInput)
	}

	id, err := s.store.InsertOne(ctx, db.CollDoctors, doctor)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return "", fmt.Errorf("doctor %s: %w", doctor.Email, ErrConflict)
		}
		s.logger.Error().Err(err).Str("email", doctor.Email).Msg("failed to insert doctor")
		return "", fmt.Errorf("failed to insert doctor: %w", err)
	}
	return id, nil
}

func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	doctors := []models.Doctor{}
	if err := s.store.Find(ctx, db.CollDoctors, bson.M{}, nil, &doctors); err != nil {
		return nil, fmt.Errorf("failed to fetch doctors: %w", err)
	}
	return doctors, nil
}

// Delete removes the doctor with email and returns the number deleted.
func (s *DoctorService) Delete(ctx context.Context, email string) (int64, error) {
	n, err := s.store.DeleteOne(ctx, db.CollDoctors, bson.M{"email": email})
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to delete doctor")
		return 0, fmt.Errorf("failed to delete doctor: %w", err)
	}
	return n, nil
}
