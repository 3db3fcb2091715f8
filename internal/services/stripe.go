package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway creates card payment intents through the Stripe API.
type StripeGateway struct {
	api    *client.API
	logger zerolog.Logger
}

// NewStripeGateway returns nil when secretKey is empty. baseURL overrides
// the API endpoint and is mostly useful in tests.
func NewStripeGateway(secretKey, baseURL string, logger zerolog.Logger) *StripeGateway {
	if secretKey == "" {
		return nil
	}

	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{logger: logger},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &StripeGateway{api: api, logger: logger}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	g.logger.Info().Str("payment_intent", intent.ID).Int64("amount", amount).Msg("payment intent created")
	return intent.ClientSecret, nil
}

// stripeLogger routes the Stripe client's own logging into zerolog.
type stripeLogger struct {
	logger zerolog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) { l.logger.Debug().Msgf(format, v...) }
func (l stripeLogger) Infof(format string, v ...interface{})  { l.logger.Debug().Msgf(format, v...) }
func (l stripeLogger) Warnf(format string, v ...interface{})  { l.logger.Warn().Msgf(format, v...) }
func (l stripeLogger) Errorf(format string, v ...interface{}) { l.logger.Error().Msgf(format, v...) }
