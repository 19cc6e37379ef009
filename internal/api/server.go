// Package api serves ride analyses and the athlete profile over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ridecoach/internal/service"
	"ridecoach/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Analyzer runs and stores the analysis of a Strava ride
type Analyzer interface {
	AnalyzeActivity(ctx context.Context, id int64) (*store.Analysis, error)
}

// Server is the HTTP API
type Server struct {
	query    *service.QueryService
	analyzer Analyzer
	router   *gin.Engine
}

// NewServer builds the router. analyzer may be nil when Strava is not
// configured; the analyze endpoint then answers 503.
func NewServer(query *service.QueryService, analyzer Analyzer) *Server {
	s := &Server{query: query, analyzer: analyzer}

	r := gin.New()
	r.Use(requestID(), requestLogger(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", s.health)

		api.GET("/profile", s.getProfile)
		api.PUT("/profile", s.putProfile)

		api.GET("/goals", s.listGoals)
		api.POST("/goals", s.createGoal)
		api.DELETE("/goals/:id", s.deleteGoal)

		api.GET("/activities", s.listActivities)
		api.GET("/activities/:id/analysis", s.getAnalysis)
		api.POST("/activities/:id/analyze", s.analyze)
	}

	s.router = r
	return s
}

// Handler returns the router as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
