// internal/server/server.go
// Package server exposes the flows over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/canvas"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/insights"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/rejection"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/siteassist"
	"github.com/anyanwuihueze/japa-genie-active/internal/gating"
	"github.com/anyanwuihueze/japa-genie-active/internal/orchestrator"
)

type Server struct {
	orchestrator *orchestrator.Orchestrator
	insights     *insights.Handler
	canvas       *canvas.Handler
	rejection    *rejection.Handler
	siteassist   *siteassist.Handler
	gate         *gating.Gate
	logger       logger.Logger

	httpServer *http.Server
}

type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func New(
	orch *orchestrator.Orchestrator,
	insightsHandler *insights.Handler,
	canvasHandler *canvas.Handler,
	rejectionHandler *rejection.Handler,
	siteassistHandler *siteassist.Handler,
	gate *gating.Gate,
	opts Options,
	log logger.Logger,
) *Server {
	s := &Server{
		orchestrator: orch,
		insights:     insightsHandler,
		canvas:       canvasHandler,
		rejection:    rejectionHandler,
		siteassist:   siteassistHandler,
		gate:         gate,
		logger: log.With(map[string]interface{}{
			"component": "server",
		}),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.Router(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/chat/history", s.handleHistory)
		r.Post("/insights", s.handleInsights)
		r.Post("/visa-insights", s.handleVisaInsights)
		r.Post("/rejection-reversal", s.handleRejectionReversal)
		r.Post("/visitor-chat", s.handleVisitorChat)
		r.Post("/upgrade", s.handleUpgrade)
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info("http server starting", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
