package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/auth"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/config"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/handlers"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/logging"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/metrics"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/notify"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "doctors-portal",
		Short:         "Clinic appointment booking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(indexesCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the unique and lookup indexes, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.IsDev())

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.EnsureIndexes(ctx); err != nil {
				return indexError(err, logger)
			}
			logger.Info().Int("count", len(db.Indexes)).Msg("indexes ensured")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token for an email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := auth.NewTokenService(cfg.AccessTokenSecret, cfg.TokenTTL).Issue(email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email to put in the token")
	return cmd
}

// openStore returns the configured store and a func that releases it.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (db.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return db.NewMemoryStore(), func() {}, nil
	}

	client, err := db.Connect(ctx, cfg.MongoURI, logger)
	if err != nil {
		return nil, nil, err
	}
	store := db.NewMongoStore(client.Database(cfg.MongoDatabase))
	return store, func() { db.Disconnect(client, logger) }, nil
}

// indexError explains a unique index that cannot be built. Databases written
// before the booking index existed can hold several bookings for the same
// treatment, date and patient; those must be removed by hand first.
func indexError(err error, logger zerolog.Logger) error {
	if errors.Is(err, db.ErrDuplicateKey) {
		logger.Error().Err(err).Msg("unique index cannot be built: delete duplicate bookings sharing treatmentName, date and patient, then run `doctors-portal indexes`")
	}
	return err
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.IsDev())

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	store, closeStore, err := openStore(startCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureIndexes(startCtx); err != nil {
		return indexError(err, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var mailer notify.Mailer
	if sg := notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridHost, cfg.EmailFrom, cfg.EmailFromName, logger); sg != nil {
		mailer = sg
	} else {
		logger.Warn().Msg("SENDGRID_API_KEY not set; emails are logged only")
	}
	notifier := notify.NewNotifier(mailer, logger, m)

	var gateway services.Gateway
	if sg := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeBaseURL, logger); sg != nil {
		gateway = sg
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set; payment intents are disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Catalog:        services.NewCatalogService(store),
		Users:          services.NewUserService(store, logger),
		Doctors:        services.NewDoctorService(store, logger),
		Bookings:       services.NewBookingService(store, notifier, m, logger),
		Availability:   services.NewAvailabilityService(store),
		Payments:       services.NewPaymentService(gateway, m, logger),
		Tokens:         auth.NewTokenService(cfg.AccessTokenSecret, cfg.TokenTTL),
		Metrics:        m,
		Gatherer:       reg,
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("store", cfg.StoreDriver).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	notifier.Wait()
	return nil
}
