// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/handlers"
	"go_scorm_attempt_keep/internal/middleware"
	"go_scorm_attempt_keep/internal/observability"
	"go_scorm_attempt_keep/internal/packagestore"
	"go_scorm_attempt_keep/internal/repository"
	"go_scorm_attempt_keep/internal/service"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	configDir := os.Getenv("APP_CONFIG_DIR")
	if configDir == "" {
		configDir = "configs"
	}
	if err := config.LoadConfig(configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := &config.Cfg

	logger := newLogger(cfg.Log.Level, tempLogger)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	// メトリクス (/metrics)。サービスより先に MeterProvider を設定する
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		slog.Error("Failed to init metrics", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Error("Failed to shutdown metrics", slog.Any("error", err))
		}
	}()

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	mailer, err := service.NewMailer(cfg)
	if err != nil {
		slog.Error("Error initializing mailer", slog.Any("error", err))
		os.Exit(1)
	}

	// Dependency Injection
	taskRepo := repository.NewGormTaskRepository()
	attemptRepo := repository.NewGormTestAttemptRepository()
	commentRepo := repository.NewGormCommentRepository()

	testAttemptService := service.NewTestAttemptService(db, taskRepo, attemptRepo,
		service.NewCommentNotificationSink(commentRepo), mailer, cfg)
	packageService := service.NewPackageService(db, taskRepo, packagestore.New(cfg.Scorm.PackageDir))

	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		slog.Info("Applying JWT authentication middleware")
		authMiddleware = middleware.JWTAuthMiddleware(cfg)
	} else {
		slog.Warn("Authentication disabled, applying development auth middleware (X-User-ID / X-Role)")
		authMiddleware = middleware.DevAuthMiddleware
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Logger:         logger,
		DB:             db,
		CORS:           cfg.CORS,
		AuthMiddleware: authMiddleware,
		Metrics:        metricsHandler,
		TestAttempts:   handlers.NewTestAttemptHandler(testAttemptService),
		Packages:       handlers.NewPackageHandler(packageService),
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}

// newLogger は設定のログレベルと APP_ENV に応じたロガーを作ります。
// APP_ENV=dev なら tint、それ以外はJSON。
func newLogger(level string, tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		tempLogger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}
