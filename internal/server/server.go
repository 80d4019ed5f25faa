// Package server serves the books dashboard over HTTP.
//
// The page at / lays the five views out in two columns, each chart an <img>
// of a /charts endpoint. Every chart request runs the pipeline through the
// shared [pipeline.Runner], so the dataset is loaded once and rendered
// charts come from the artifact cache on later requests.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bookdash/pkg/pipeline"
	"github.com/matzehuels/bookdash/pkg/render"
)

//go:embed templates/*.html
var templates embed.FS

// Title is the dashboard heading.
const Title = "Best Selling Books Dashboard"

// Options configures a Server.
type Options struct {
	Render render.Options // default chart size
	Logger *log.Logger
}

// Server is the dashboard HTTP handler.
type Server struct {
	runner *pipeline.Runner
	render render.Options
	logger *log.Logger
	router *chi.Mux
	pages  *template.Template
}

// New creates a server over runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		render: opts.Render.WithDefaults(),
		logger: logger,
		router: chi.NewRouter(),
		pages:  template.Must(template.ParseFS(templates, "templates/*.html")),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/charts/{file}", s.handleChart)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/views", s.handleListViews)
		r.Get("/views/{name}", s.handleGetView)
		r.Get("/stats", s.handleStats)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path}})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
