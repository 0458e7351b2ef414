// Package server implements the HTTP JSON API over the job record store.
// The server is stateless: every request is translated into a store call
// and the result mapped back to the documented response shape.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/jobpilot/jobstore/app/enums"
	"github.com/jobpilot/jobstore/app/store"
)

// Store defines the job store operations the API dispatches to
type Store interface {
	Upsert(ctx context.Context, urls []string, status enums.Status, updateIfExists bool) (store.UpsertResult, error)
	Refresh(ctx context.Context, url string, status enums.Status) (store.JobEntry, error)
	Next(ctx context.Context) (store.JobEntry, error)
	GetAll(ctx context.Context) ([]store.JobEntry, error)
	GetByStatus(ctx context.Context, status enums.Status) ([]store.JobEntry, error)
	Truncate(ctx context.Context) (int64, error)
	MarkAllNew(ctx context.Context) (int64, error)
}

// Server represents the API server
type Server struct {
	store         Store
	version       string
	mutateLimiter *limiter.Limiter // rate limit for mutating endpoints
}

// Config holds server configuration
type Config struct {
	Store         Store
	Version       string
	MutationLimit float64 // max mutating requests per second, 0 for default
}

// New creates a new API server with the store injected
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server initialization failed: store is required")
	}

	mutationLimit := cfg.MutationLimit
	if mutationLimit <= 0 {
		mutationLimit = 10
	}

	return &Server{
		store:         cfg.Store,
		version:       cfg.Version,
		mutateLimiter: tollbooth.NewLimiter(mutationLimit, nil),
	}, nil
}

// Run starts the API server and blocks until ctx is canceled
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting api server on %s", address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	// global middleware - applied to all routes
	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("jobstored", "jobpilot", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(64*1024), // 64KB max request size
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	// read endpoints
	router.HandleFunc("GET /all-jobs", s.handleAllJobs)
	router.HandleFunc("GET /jobs-by-status/{status}", s.handleJobsByStatus)

	// mutating endpoints, rate limited
	mutate := router.With(tollbooth.HTTPMiddleware(s.mutateLimiter))
	mutate.HandleFunc("POST /add-jobs", s.handleAddJobs)
	mutate.HandleFunc("POST /refresh-job", s.handleRefreshJob)
	mutate.HandleFunc("GET /next-job", s.handleNextJob) // claims a job, mutates despite GET
	mutate.HandleFunc("POST /admin/reset", s.handleReset)

	return router
}
