package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Gigatchad/e-learning/internal/audit"
	"github.com/Gigatchad/e-learning/internal/config"
	"github.com/Gigatchad/e-learning/internal/es"
	"github.com/Gigatchad/e-learning/internal/httpserver"
	"github.com/Gigatchad/e-learning/internal/logging"
	"github.com/Gigatchad/e-learning/internal/middleware"
	loggingmw "github.com/Gigatchad/e-learning/internal/middleware/logging"
	"github.com/Gigatchad/e-learning/internal/models"
	"github.com/Gigatchad/e-learning/internal/mykafka"
	"github.com/Gigatchad/e-learning/internal/repo"
	"github.com/Gigatchad/e-learning/internal/service"
	"github.com/Gigatchad/e-learning/internal/tokens"
	"github.com/Gigatchad/e-learning/pkg/db"
)

func main() {
	cfg := config.Load()
	cfg.MustValidateSecrets()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := database.AutoMigrate(&models.User{}, &models.Course{}, &models.Lesson{}, &models.Enrollment{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	issuer := &tokens.Issuer{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}
	gormRepo := repo.NewGormRepo(database)
	svc := &service.AuthService{Repo: gormRepo, Issuer: issuer}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, []string{mykafka.TopicUserEvents})
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		svc.Events = producer
	} else {
		logger.Warn("kafka disabled", "reason", "no brokers configured")
	}

	var trail *audit.Trail
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		trail = audit.NewTrail(esClient)
	} else {
		logger.Warn("audit trail disabled", "reason", "no elasticsearch configured")
	}

	auth := middleware.NewAuthenticator(gormRepo, issuer)
	policy := middleware.NewPolicy(gormRepo)

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:          auth,
		Policy:        policy,
		AuthHandler:   &httpserver.AuthHTTP{Svc: svc},
		CourseHandler: &httpserver.CourseHTTP{Repo: gormRepo, Policy: policy},
		AdminHandler:  &httpserver.AdminHTTP{Svc: svc, Trail: trail},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
