// Package main initializes and starts the DeepTrace API server, setting up
// configuration, logging, the database, repositories, services, handlers and
// routing.
package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/akovalyov/deeptrace/internal/config"
	"github.com/akovalyov/deeptrace/internal/db"
	"github.com/akovalyov/deeptrace/internal/detector"
	"github.com/akovalyov/deeptrace/internal/logger"
	"github.com/akovalyov/deeptrace/internal/middleware"
	"github.com/akovalyov/deeptrace/internal/repository"
	"github.com/akovalyov/deeptrace/internal/server/handler/http"
	"github.com/akovalyov/deeptrace/internal/service"
	"github.com/akovalyov/deeptrace/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// orDefault returns s if non-empty, otherwise def (cmp.Or needs Go 1.22+).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found")
	}
	cfg := config.Load()

	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("Info"); err != nil {
		panic(err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// Initialize PostgreSQL.
	postgresDB, err := db.InitPostgres(cfg.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Token signing.
	tokens, err := token.NewManager(cfg.SecretKey)
	if err != nil {
		zapLogger.Fatal("cannot init token manager", zap.Error(err))
	}

	// Repositories and services.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	detectionRepo := repository.NewPostgresDetectionRepository(postgresDB)

	userService := service.NewUserService(userRepo)
	detectionService := service.NewDetectionService(detectionRepo,
		detector.Random(time.Now().UnixNano()))

	// Fail detections abandoned mid-processing, e.g. after a crash.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	db.StartStaleDetectionSweeper(sweepCtx, postgresDB,
		10*time.Minute, 30*time.Minute, zapLogger)

	// Seed the default superuser once if absent.
	if _, err := userService.EnsureSuperuser(context.Background(),
		cfg.FirstSuperuserEmail, cfg.FirstSuperuserPassword); err != nil {
		zapLogger.Fatal("cannot ensure default superuser", zap.Error(err))
	}

	// HTTP handlers.
	authHandler := &http.AuthenticationHandler{
		Users:    userService,
		Tokens:   tokens,
		TokenTTL: cfg.TokenTTL,
	}
	usersHandler := &http.UsersHandler{Users: userService}
	detectionHandler := &http.DetectionHandler{
		Detections: detectionService,
		Policy: http.UploadPolicy{
			Dir:       cfg.UploadDir,
			MaxBytes:  cfg.MaxUploadBytes,
			ImageExts: cfg.AllowedImageExts,
			VideoExts: cfg.AllowedVideoExts,
		},
	}

	router := http.NewRouter(
		http.RouterConfig{Prefix: cfg.APIPrefix, AllowedOrigins: cfg.AllowedOrigins},
		authHandler,
		usersHandler,
		detectionHandler,
		middleware.Authenticator(tokens, userService),
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
