package services

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
)

const currencyUSD = "usd"

// Gateway creates payment intents with an external processor and returns
// the intent's client secret.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type PaymentService struct {
	gateway Gateway
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewPaymentService(gateway Gateway, m *metrics.Metrics, logger zerolog.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, metrics: m, logger: logger}
}

// AmountInCents converts a price in dollars to the smallest currency unit.
func AmountInCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// CreateIntent starts a card payment of price dollars.
func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return "", ErrInvalidPrice
	}
	amount := AmountInCents(price)
	if amount <= 0 {
		return "", ErrInvalidPrice
	}
	if s.gateway == nil {
		return "", fmt.Errorf("%w: no gateway configured", ErrPaymentProvider)
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, amount, currencyUSD)
	s.metrics.ObservePaymentIntent(err)
	if err != nil {
		s.logger.Error().Err(err).Int64("amount", amount).Msg("failed to create payment intent")
		return "", fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	return secret, nil
}
