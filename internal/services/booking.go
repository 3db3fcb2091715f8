package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

// BookingNotifier is told about bookings after they are persisted.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, b models.Booking)
	PaymentReceived(ctx context.Context, b models.Booking)
}

// BookingResult is the outcome of Create. When Accepted is false, Booking
// is the one already held by the patient for that treatment and date.
type BookingResult struct {
	Accepted   bool
	Booking    models.Booking
	InsertedID string
}

type BookingService struct {
	store    db.Store
	notifier BookingNotifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewBookingService(store db.Store, notifier BookingNotifier, m *metrics.Metrics, logger zerolog.Logger) *BookingService {
	return &BookingService{store: store, notifier: notifier, metrics: m, logger: logger, now: time.Now}
}

func bookingKey(b *models.Booking) bson.M {
	return bson.M{"treatmentName": b.TreatmentName, "date": b.Date, "patient": b.Patient}
}

// Create stores b unless the patient already holds a booking for the same
// treatment on the same date. The unique index decides races between
// concurrent requests.
func (s *BookingService) Create(ctx context.Context, b *models.Booking) (*BookingResult, error) {
	b.TreatmentName = strings.TrimSpace(b.TreatmentName)
	b.Date = strings.TrimSpace(b.Date)
	b.Patient = strings.TrimSpace(b.Patient)
	if b.TreatmentName == "" || b.Date == "" || b.Patient == "" {
		return nil, fmt.Errorf("%w: treatmentName, date and patient are required", ErrInvalidInput)
	}
	b.ID = primitive.NilObjectID
	b.Paid = false
	b.TransactionID = ""

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if existing, err := s.findByKey(ctx, b); err == nil {
		s.metrics.ObserveBooking("duplicate")
		return &BookingResult{Accepted: false, Booking: *existing}, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		s.metrics.ObserveBooking("error")
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}

	id, err := s.store.InsertOne(ctx, db.CollBookings, b)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			existing, ferr := s.findByKey(ctx, b)
			if ferr != nil {
				s.metrics.ObserveBooking("error")
				return nil, fmt.Errorf("failed to fetch existing booking: %w", ferr)
			}
			s.metrics.ObserveBooking("duplicate")
			return &BookingResult{Accepted: false, Booking: *existing}, nil
		}
		s.metrics.ObserveBooking("error")
		s.logger.Error().Err(err).Str("patient", b.Patient).Msg("failed to insert booking")
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	if oid, perr := primitive.ObjectIDFromHex(id); perr == nil {
		b.ID = oid
	}
	s.metrics.ObserveBooking("accepted")
	s.logger.Info().Str("booking_id", id).Str("treatment", b.TreatmentName).Str("date", b.Date).Msg("booking created")
	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, *b)
	}
	return &BookingResult{Accepted: true, Booking: *b, InsertedID: id}, nil
}

func (s *BookingService) findByKey(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	var existing models.Booking
	if err := s.store.FindOne(ctx, db.CollBookings, bookingKey(b), &existing); err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *BookingService) ListByPatient(ctx context.Context, patient string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if err := s.store.Find(ctx, db.CollBookings, bson.M{"patient": patient}, nil, &bookings); err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return bookings, nil
}

// Get returns the booking with the given hex id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var booking models.Booking
	if err := s.store.FindOne(ctx, db.CollBookings, bson.M{"_id": oid}, &booking); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &booking, nil
}

// MarkPaid flags the booking as paid and then appends a payment record.
// A failed update leaves no payment behind, so the caller can retry.
func (s *BookingService) MarkPaid(ctx context.Context, id string, req models.MarkPaidRequest) (*models.UpdateResult, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if req.TransactionID == "" {
		return nil, fmt.Errorf("%w: transactionId is required", ErrInvalidInput)
	}
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.store.UpdateOne(ctx, db.CollBookings, bson.M{"_id": booking.ID},
		bson.M{"paid": true, "transactionId": req.TransactionID}, false)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", id).Msg("failed to mark booking paid")
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	payment := models.Payment{
		Booking:       id,
		TransactionID: req.TransactionID,
		Patient:       booking.Patient,
		Price:         req.Price,
		CreatedAt:     s.now().UTC(),
	}
	if payment.Price == 0 {
		payment.Price = booking.Price
	}
	if _, err := s.store.InsertOne(ctx, db.CollPayments, payment); err != nil {
		s.logger.Error().Err(err).Str("booking_id", id).Msg("failed to record payment")
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	booking.Paid = true
	booking.TransactionID = req.TransactionID
	s.logger.Info().Str("booking_id", id).Str("transaction_id", req.TransactionID).Msg("booking paid")
	if s.notifier != nil {
		s.notifier.PaymentReceived(ctx, *booking)
	}
	return result, nil
}
