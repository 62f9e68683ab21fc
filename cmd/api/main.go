package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"mibo/cmd/internal/config"
	"mibo/cmd/internal/domain/sqlite"
	"mibo/cmd/internal/domain/sqlite/repository"
	cognitoclient "mibo/cmd/internal/integration/aws/cognito"
	"mibo/cmd/internal/integration/patientapi"
	"mibo/cmd/internal/routes"
	"mibo/cmd/internal/service"
	"mibo/cmd/internal/utils"
	"mibo/cmd/internal/utils/validators"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:   "mibo",
		Short: "Mibo patient portal gateway",
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, reading the environment only")
	}
	return config.Load()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local storage database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateStorage(); err != nil {
				return err
			}
			// Init migrates on open
			if _, err := sqlite.Init(cfg.DBPath); err != nil {
				return err
			}
			log.Infof("local storage ready at %s", cfg.DBPath)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.IsDev() {
		log.SetLevel(log.DEBUG)
	}

	validate := validator.New()
	validators.Register(validate, cfg.PhonePrefix)

	// Init SQLite
	db, err := sqlite.Init(cfg.DBPath)
	if err != nil {
		return err
	}
	clock := utils.SystemClock{}
	records := service.NewRecordStore(repository.NewStorageRepository(db), validate, clock)

	// Cognito client, optional
	var cogClient cognitoclient.CognitoInterface
	if cfg.CognitoEnabled() {
		client, err := cognitoclient.InitCognitoClient(ctx, cfg.AWSRegion, cfg.CognitoClientID)
		if err != nil {
			return err
		}
		cogClient = client
	} else {
		log.Warn("COGNITO_CLIENT_ID not set, login is disabled")
	}

	tokens := service.NewTokenManager(records, cogClient, clock)
	api := patientapi.NewClient(cfg.APIBaseURL, cfg.APITimeout, tokens)

	// Getting services
	patientService := service.NewPatientService(api, records, validate, cogClient)
	apptService := service.NewAppointmentService(api, clock, cfg.StartingSoonThreshold())
	bookingService := service.NewBookingService(api, records, validate, clock, service.BookingOptions{
		PhonePrefix: cfg.PhonePrefix,
		Poll: service.PollPolicy{
			Interval:    cfg.PollInterval,
			Timeout:     cfg.PollTimeout,
			MaxAttempts: cfg.PollMaxAttempts,
		},
		RedirectDelay: cfg.RedirectDelay,
		RedirectRoute: cfg.RedirectRoute,
		SessionTTL:    cfg.SessionTTL,
	})
	bookingService.OnRedirect = func(id uuid.UUID, route string) {
		log.Infof("booking %s confirmed, redirecting to %s", id, route)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))

	routes.Register(e,
		routes.NewPatientDefault(patientService),
		routes.NewAppointmentDefault(apptService),
		routes.NewBookingDefault(bookingService),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		bookingService.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = e.Shutdown(shutdownCtx)
	bookingService.Shutdown()
	return err
}
