package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/edusdg/tutoria-api/internal/config"
	"github.com/edusdg/tutoria-api/internal/domain/account"
	"github.com/edusdg/tutoria-api/internal/domain/ledger"
	"github.com/edusdg/tutoria-api/internal/domain/payment"
	"github.com/edusdg/tutoria-api/internal/domain/tutor"
	"github.com/edusdg/tutoria-api/internal/middleware"
	"github.com/edusdg/tutoria-api/internal/pkg/aitutor"
	"github.com/edusdg/tutoria-api/internal/pkg/database"
	"github.com/edusdg/tutoria-api/internal/pkg/intasend"
	"github.com/edusdg/tutoria-api/internal/pkg/jwt"
	"github.com/edusdg/tutoria-api/internal/pkg/logger"
	"github.com/edusdg/tutoria-api/internal/pkg/metrics"
	"github.com/edusdg/tutoria-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Tutoria API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	intasendClient := intasend.NewClient(intasend.Config{
		PublicKey:     cfg.IntaSendPublicKey,
		WebhookSecret: cfg.IntaSendWebhookSecret,
		BaseURL:       cfg.FrontendURL,
	})

	aiClient := aitutor.NewHFClient(aitutor.Config{
		APIToken: cfg.HuggingFaceAPIToken,
		Model:    cfg.HuggingFaceModel,
		Timeout:  cfg.HuggingFaceTimeout,
	})

	// ---------- Repositories ----------
	accountRepo := account.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	tutorRepo := tutor.NewRepository(db)

	// ---------- Services ----------
	ledgerService := ledger.NewService(ledgerRepo)
	accountService := account.NewService(accountRepo, ledgerService, jwtService, cfg.StarterCredits)
	tutorService := tutor.NewService(ledgerService, tutorRepo, aiClient)

	paymentRepo := payment.NewRepository(db, ledgerService)
	paymentService := payment.NewService(
		paymentRepo,
		accountService,
		intasendClient,
		creditPackages(cfg),
		cfg.Currency,
		redisClient,
	)

	// ---------- Handlers ----------
	accountHandler := account.NewHandler(accountService)
	ledgerHandler := ledger.NewHandler(ledgerService)
	tutorHandler := tutor.NewHandler(tutorService)
	paymentHandler := payment.NewHandler(paymentService, cfg.IntaSendWebhookSecret)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			response.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", accountHandler.Routes(authMiddleware))
		r.Mount("/credits", ledgerHandler.Routes(authMiddleware))
		r.Mount("/ai", tutorHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // inference calls can run up to their own 30s budget
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func creditPackages(cfg *config.Config) []payment.Package {
	packages := make([]payment.Package, 0, len(cfg.CreditPackages))
	for _, p := range cfg.CreditPackages {
		packages = append(packages, payment.Package{Credits: p.Credits, PriceCents: p.PriceCents})
	}
	return packages
}
