package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/vesto-server/internal/auth"
	"github.com/yourorg/vesto-server/internal/gateway"
	"github.com/yourorg/vesto-server/internal/grading"
	"github.com/yourorg/vesto-server/internal/ledger"
	"github.com/yourorg/vesto-server/internal/progress"
	pgRepo "github.com/yourorg/vesto-server/internal/repository/postgres"
	redisRepo "github.com/yourorg/vesto-server/internal/repository/redis"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	dbURL := os.Getenv("DATABASE_URL")
	redisURL := os.Getenv("REDIS_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db, err := pgRepo.Connect(dbURL)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	if err := pgRepo.RunMigrations(dbURL, "migrations"); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	redisClient, err := redisRepo.Connect(redisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	logger.Info("redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := pgRepo.NewUserRepo(db)
	accountRepo := pgRepo.NewAccountRepo(db)
	holdingRepo := pgRepo.NewHoldingRepo(db)
	pitchRepo := pgRepo.NewPitchRepo(db)
	progressRepo := pgRepo.NewProgressRepo(db)
	companyRepo := pgRepo.NewCompanyRepo(db)
	quoteRepo := redisRepo.NewQuoteRepo(redisClient)

	jwtSvc := auth.NewJWTService(jwtSecret)

	ledgerSvc := ledger.NewService(db, accountRepo, holdingRepo, pitchRepo)
	progressSvc := progress.NewService(progressRepo)

	grader, err := grading.New(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize grading client", "err", err)
		os.Exit(1)
	}

	stream := gateway.NewQuoteStream(quoteRepo, logger)

	handlers := gateway.NewHandlers(
		userRepo, accountRepo, pitchRepo, companyRepo, quoteRepo,
		ledgerSvc, progressSvc, grader, jwtSvc, logger,
	)
	router := gateway.NewRouter(handlers, stream, jwtSvc, allowedOrigin)

	go stream.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
