// Package server exposes the REST API: keyword management, trending results,
// chart data, and collection control with SSE progress.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/msaleem/trendwatch/pkg/domain"
	"github.com/msaleem/trendwatch/pkg/keywords"
	"github.com/msaleem/trendwatch/pkg/scheduler"
)

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	keywords  KeywordStore
	trending  TrendingStore
	collector Collector
	scheduler Scheduler
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// KeywordStore manages the tracked keyword set
type KeywordStore interface {
	All() []string
	LastUpdated() time.Time
	Add(ctx context.Context, candidate string) error
	Remove(ctx context.Context, candidate string) error
	SetAll(ctx context.Context, candidates []string) (keywords.SetResult, error)
	ResetDefaults(ctx context.Context) error
	Validate(candidates []string) []keywords.Rejection
}

// TrendingStore serves persisted collection results
type TrendingStore interface {
	Latest(ctx context.Context) (*domain.Snapshot, error)
	LatestItems(ctx context.Context) ([]domain.NormalizedItem, error)
}

// Collector runs collections on demand and streams progress
type Collector interface {
	Run(ctx context.Context) (*domain.Snapshot, error)
	Subscribe() (<-chan domain.ProgressEvent, func())
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	Status() scheduler.Status
	TriggerNow()
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, kw KeywordStore, trending TrendingStore, coll Collector, sched Scheduler, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		keywords:  kw,
		trending:  trending,
		collector: coll,
		scheduler: sched,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: 0, // SSE endpoint holds the connection open
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("trendwatch", "msaleem", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("GET /keywords", s.getKeywordsHandler)
		r.HandleFunc("POST /keywords", s.addKeywordHandler)
		r.HandleFunc("PUT /keywords", s.setKeywordsHandler)
		r.HandleFunc("DELETE /keywords/{keyword}", s.removeKeywordHandler)
		r.HandleFunc("POST /keywords/reset", s.resetKeywordsHandler)
		r.HandleFunc("POST /keywords/validate", s.validateKeywordsHandler)

		r.HandleFunc("GET /trending", s.trendingHandler)
		r.HandleFunc("POST /collect", s.collectHandler)
		r.HandleFunc("GET /collect/events", s.collectEventsHandler)

		r.HandleFunc("GET /charts/frequency", s.frequencyChartHandler)
		r.HandleFunc("GET /charts/interest", s.interestChartHandler)
		r.HandleFunc("GET /charts/engagement", s.engagementChartHandler)

		r.HandleFunc("GET /scheduler", s.schedulerStatusHandler)
		r.HandleFunc("POST /scheduler/trigger", s.schedulerTriggerHandler)
	})
}
