// Command api serves the event booking HTTP API.
//
// @title Event Booking API
// @version 1.0
// @description Event catalogue, booking requests, staff management and live updates.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventbooking/config"
	_ "eventbooking/docs"
	"eventbooking/internal/adapters/auth"
	"eventbooking/internal/adapters/email"
	"eventbooking/internal/adapters/realtime"
	httpdelivery "eventbooking/internal/delivery/http"
	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
	"eventbooking/internal/repository/postgres"
	"eventbooking/internal/services"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ContextTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	if err := postgres.Migrate(cfg.DBUrl); err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	employeeRepo := postgres.NewEmployeeRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWTAuthority(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
		RelayURL: cfg.Email.RelayURL,
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	var feed domain.ChangeFeed
	switch cfg.RealtimeProvider {
	case "redis":
		redisFeed, err := realtime.NewRedisFeed(ctx, cfg.RedisURL, logger)
		if err != nil {
			return err
		}
		defer redisFeed.Close()
		go redisFeed.Run(ctx)
		feed = redisFeed
	default:
		feed = realtime.NewHub(realtime.DefaultBuffer)
	}

	userService := services.NewUserService(userRepo, employeeRepo, hasher, tokens, cfg.JWTExpiry, cfg.AdminEmails, logger, cfg.ContextTimeout)
	eventService := services.NewEventService(eventRepo, feed, logger, cfg.ContextTimeout)
	requestService := services.NewRequestService(requestRepo, eventRepo, paymentRepo, employeeRepo, userRepo, emailService, feed, logger, cfg.ContextTimeout)
	employeeService := services.NewEmployeeService(userRepo, employeeRepo, hasher, emailService, feed, logger, cfg.ContextTimeout)

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		User:     controllers.NewUserController(logger, userService),
		Event:    controllers.NewEventController(logger, eventService),
		Request:  controllers.NewRequestController(logger, requestService),
		Employee: controllers.NewEmployeeController(logger, employeeService),
		Live:     controllers.NewLiveController(logger, requestService, employeeService, feed, cfg.CORSAllowedOrigins),
	}, tokens, logger)

	// No WriteTimeout: live subscriptions hold their connection open.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router)),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", srv.Addr, "env", cfg.Environment, "realtime", cfg.RealtimeProvider, "email", cfg.Email.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
