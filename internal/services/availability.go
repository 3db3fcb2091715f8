package services

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

// ComputeAvailability returns a copy of services where each entry's slots
// exclude those booked for that service on date. Order of the remaining
// slots is preserved and the inputs are not modified.
func ComputeAvailability(date string, services []models.Service, bookings []models.Booking) []models.Service {
	booked := map[string]map[string]struct{}{}
	for _, b := range bookings {
		if b.Date != date {
			continue
		}
		if booked[b.TreatmentName] == nil {
			booked[b.TreatmentName] = map[string]struct{}{}
		}
		booked[b.TreatmentName][b.Slot] = struct{}{}
	}

	out := make([]models.Service, 0, len(services))
	for _, svc := range services {
		taken := booked[svc.Name]
		free := make([]string, 0, len(svc.Slots))
		for _, slot := range svc.Slots {
			if _, ok := taken[slot]; !ok {
				free = append(free, slot)
			}
		}
		svc.Slots = free
		out = append(out, svc)
	}
	return out
}

// AvailabilityService projects free slots for a date from the store.
type AvailabilityService struct {
	store db.Store
}

func NewAvailabilityService(store db.Store) *AvailabilityService {
	return &AvailabilityService{store: store}
}

func (s *AvailabilityService) Available(ctx context.Context, date string) ([]models.Service, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	var services []models.Service
	if err := s.store.Find(ctx, db.CollServices, bson.M{}, nil, &services); err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}
	var bookings []models.Booking
	if err := s.store.Find(ctx, db.CollBookings, bson.M{"date": date}, nil, &bookings); err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return ComputeAvailability(date, services, bookings), nil
}
