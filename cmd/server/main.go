package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"liveask/config"
	"liveask/internal/adapters/auth"
	"liveask/internal/adapters/email"
	"liveask/internal/adapters/fingerprint"
	"liveask/internal/broadcast"
	delivery "liveask/internal/delivery/http"
	"liveask/internal/delivery/http/controllers"
	"liveask/internal/delivery/http/middleware"
	"liveask/internal/repository/postgres"
	"liveask/internal/services"
	"liveask/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "err", err)
		os.Exit(1)
	}

	fingerprints, err := fingerprint.New()
	if err != nil {
		logger.Error("failed to initialize fingerprint engine", "err", err)
		os.Exit(1)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", "err", err)
		os.Exit(1)
	}

	hub := broadcast.NewHub(cfg.StreamBacklog, logger)
	eventStore := store.New(
		postgres.NewEventRepository(db),
		postgres.NewQuestionRepository(db),
		auth.Generator{},
		hub,
		logger,
	)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	eventService := services.NewEventService(eventStore, emailService, services.EventServiceConfig{
		BaseURL:       cfg.BaseURL,
		RatePerSecond: cfg.RatePerSecond,
		RateBurst:     cfg.RateBurst,
	}, logger)

	eventController := controllers.NewEventController(logger, eventService, fingerprints)
	streamController := controllers.NewStreamController(logger, eventService)
	mux := delivery.NewRouter(eventController, streamController)

	var handler http.Handler = middleware.ClientMetadata(mux)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
