// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coanalystai/coanalyst/config"
	"github.com/coanalystai/coanalyst/internal/analyst/core"
	"github.com/coanalystai/coanalyst/internal/analyst/telemetry"
	"github.com/coanalystai/coanalyst/internal/runtime"
	"github.com/coanalystai/coanalyst/internal/session"
)

// Server wires the orchestrator into an echo application.
type Server struct {
	logger       *log.Logger
	cfg          *config.Config
	echo         *echo.Echo
	orchestrator *core.Orchestrator
	store        *session.Store
	metrics      *telemetry.Telemetry
	scheduler    *Scheduler
}

// New builds the HTTP server. metrics may be nil when telemetry is
// disabled.
func New(cfg *config.Config, orch *core.Orchestrator, store *session.Store, metrics *telemetry.Telemetry) *Server {
	s := &Server{
		logger:       log.New(log.Writer(), "[SERVER] ", log.LstdFlags),
		cfg:          cfg,
		orchestrator: orch,
		store:        store,
		metrics:      metrics,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.HTTPErrorHandler = jsonErrorHandler(s.logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if secret := cfg.Server.JWTSecret; secret != "" {
		api.Use(runtime.EchoAuthMiddleware(secret))
	}
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.POST("/sessions/:id/analyze", s.analyze)
	api.GET("/sessions/:id/records", s.getRecords)
	api.GET("/history", s.getHistory)
	api.GET("/stats", s.getStats)
	api.GET("/knowledge", s.searchKnowledge)
	api.GET("/knowledge/methods/:id", s.getKnowledgeMethod)

	s.echo = e
	s.scheduler = NewScheduler(cfg, store)
	return s
}

// Start runs the scheduler and blocks serving HTTP.
func (s *Server) Start() error {
	s.scheduler.Start()
	s.logger.Printf("listening on %s", s.cfg.Server.Address)
	return s.echo.Start(s.cfg.Server.Address)
}

// Shutdown stops the scheduler and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop()
	return s.echo.Shutdown(ctx)
}

// jsonErrorHandler renders every error as a uniform JSON body.
func jsonErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Printf("request failed: %v", err)
		}
		_ = c.JSON(code, map[string]string{"error": message})
	}
}
