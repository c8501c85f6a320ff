package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arnavshah/autohours-api-go/pkg/auth"
	"github.com/arnavshah/autohours-api-go/pkg/config"
	"github.com/arnavshah/autohours-api-go/pkg/database"
	"github.com/arnavshah/autohours-api-go/pkg/handlers"
	"github.com/arnavshah/autohours-api-go/pkg/metrics"
	"github.com/arnavshah/autohours-api-go/pkg/sessions"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	log := cfg.Logger()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.InitDB(cfg, log)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	if err := auth.EnsureAdminExists(db, cfg, log); err != nil {
		log.WithError(err).Warn("could not ensure admin user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := sessions.NewRegistry(cfg.SessionTTL, log, metrics.BulkEditObserver{})
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		registry.Run(ctx, cfg.SweepEvery)
	}()

	h := &handlers.Handler{
		DB:       db,
		Auth:     auth.New(cfg),
		Sessions: registry,
		Config:   cfg,
		Log:      log,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("could not run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	<-sweeperDone
	log.Info("grid sessions closed")
}
