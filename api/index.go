package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arnavshah/autohours-api-go/pkg/auth"
	"github.com/arnavshah/autohours-api-go/pkg/config"
	"github.com/arnavshah/autohours-api-go/pkg/database"
	"github.com/arnavshah/autohours-api-go/pkg/handlers"
	"github.com/arnavshah/autohours-api-go/pkg/metrics"
	"github.com/arnavshah/autohours-api-go/pkg/sessions"
)

var r http.Handler

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadEnv(".env", "../.env")
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	log := cfg.Logger()

	db, err := database.InitDB(cfg, log)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	_ = auth.EnsureAdminExists(db, cfg, log)

	gin.SetMode(gin.ReleaseMode)

	// Serverless instances are short-lived; idle sessions are swept on demand.
	registry := sessions.NewRegistry(cfg.SessionTTL, log, metrics.BulkEditObserver{})
	h := &handlers.Handler{
		DB:       db,
		Auth:     auth.New(cfg),
		Sessions: registry,
		Config:   cfg,
		Log:      log,
	}
	r = sweeping(registry, h.HTTPHandler())
}

func sweeping(registry *sessions.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		registry.Sweep()
		next.ServeHTTP(w, req)
	})
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
