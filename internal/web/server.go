// Package web provides the REST API server for visit records and experts.
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/bfcwefc/msme-desk/internal/expert"
	"github.com/bfcwefc/msme-desk/internal/logging"
	"github.com/bfcwefc/msme-desk/internal/record"
	"github.com/bfcwefc/msme-desk/internal/stats"
	"github.com/bfcwefc/msme-desk/internal/upload"
)

// Options configures a Server.
type Options struct {
	UploadDir      string
	CORSOrigins    []string
	StatsTTL       time.Duration
	MaxUploadBytes int64
}

// Server is the REST API HTTP server.
type Server struct {
	db        *sql.DB
	records   *record.Service
	stats     *stats.Service
	experts   *expert.Service
	uploadDir string
	maxUpload int64
	router    *mux.Router
	handler   http.Handler
}

// NewServer creates an API server backed by the given database.
func NewServer(db *sql.DB, opts Options) (*Server, error) {
	files, err := upload.NewDiskStore(opts.UploadDir)
	if err != nil {
		return nil, err
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}

	recordRepo := record.NewRepository(db)
	s := &Server{
		db:        db,
		records:   record.NewService(recordRepo, files),
		stats:     stats.NewService(recordRepo, opts.StatsTTL),
		experts:   expert.NewService(expert.NewRepository(db)),
		uploadDir: files.Dir(),
		maxUpload: maxUpload,
		router:    mux.NewRouter(),
	}
	s.routes()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin", "X-Requested-With"},
		MaxAge:         86400,
	})
	s.handler = c.Handler(s.router)

	return s, nil
}

func (s *Server) routes() {
	r := s.router
	logRequests := logging.RequestLogger(routeName)
	r.Use(logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.PathPrefix(record.UploadPrefix + "/").Handler(
		http.StripPrefix(record.UploadPrefix+"/", http.FileServer(http.Dir(s.uploadDir))),
	).Methods(http.MethodGet, http.MethodHead)

	// Fixed paths before /records/{id}.
	r.HandleFunc("/records/stats", s.handleGlobalStats).Methods(http.MethodGet)
	r.HandleFunc("/records/expert-stats/{expertName}", s.handleExpertStats).Methods(http.MethodGet)
	r.HandleFunc("/records", s.handleListRecords).Methods(http.MethodGet)
	r.HandleFunc("/records", s.handleCreateRecord).Methods(http.MethodPost)
	r.HandleFunc("/records/{id}", s.handleGetRecord).Methods(http.MethodGet)
	r.HandleFunc("/records/{id}", s.handleUpdateRecord).Methods(http.MethodPut)
	r.HandleFunc("/records/{id}", s.handleDeleteRecord).Methods(http.MethodDelete)
	r.HandleFunc("/records/{id}/photos", s.handleAddPhotos).Methods(http.MethodPost)
	r.HandleFunc("/records/{id}/photos", s.handleRemovePhoto).Methods(http.MethodDelete)

	r.HandleFunc("/experts", s.handleListExperts).Methods(http.MethodGet)
	r.HandleFunc("/experts", s.handleCreateExpert).Methods(http.MethodPost)
	r.HandleFunc("/experts/{id}", s.handleGetExpert).Methods(http.MethodGet)
	r.HandleFunc("/experts/{id}", s.handleUpdateExpert).Methods(http.MethodPut)
	r.HandleFunc("/experts/{id}", s.handleDeleteExpert).Methods(http.MethodDelete)
	r.HandleFunc("/experts/{id}/plans", s.handleAddMonth).Methods(http.MethodPost)
	r.HandleFunc("/experts/{id}/plans/{plan:[0-9]+}/current", s.handleSetCurrentMonth).Methods(http.MethodPost)
	r.HandleFunc("/experts/{id}/plans/{plan:[0-9]+}/weeks", s.handleAddWeek).Methods(http.MethodPost)
	r.HandleFunc("/experts/{id}/plans/{plan:[0-9]+}/weeks/{week:[0-9]+}", s.handleEditWeek).Methods(http.MethodPut)
	r.HandleFunc("/experts/{id}/plans/{plan:[0-9]+}/weeks/{week:[0-9]+}", s.handleDeleteWeek).Methods(http.MethodDelete)
	r.HandleFunc("/experts/{id}/active-week", s.handleActiveWeek).Methods(http.MethodGet)

	// Router middleware only runs on matched routes.
	r.NotFoundHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apiJSON(w, map[string]string{"error": "route not found", "path": req.URL.Path}, http.StatusNotFound)
	}))
	r.MethodNotAllowedHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}))
}

// routeName returns the matched route template for metric labels.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Stats returns the statistics service, so callers can tune sector buckets.
func (s *Server) Stats() *stats.Service {
	return s.stats
}

// ListenAndServe serves on the given port until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting API server", zap.String("addr", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		apiJSON(w, map[string]string{"status": "error", "error": err.Error()}, http.StatusServiceUnavailable)
		return
	}
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
