// Package server implements the brickguide web application.
//
// Operators log in at a workstation, which starts a session on a random
// blueprint and shows the preview of step 1. They move through the steps
// with the page buttons or with acknowledgments from gesture and voice
// clients (POST /auto_acknowledge). Every move is pushed to open pages over
// a websocket and, when a pick-by-light strip is configured, lights the bin
// holding the next brick. After the last step the control page shows the
// four elevations of the finished model.
//
// Every image is rendered on request; nothing rendered is persisted beyond
// the optional artifact cache.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/assys/brickguide/pkg/brick"
	"github.com/assys/brickguide/pkg/observability/prom"
	"github.com/assys/brickguide/pkg/pickbylight"
	"github.com/assys/brickguide/pkg/pipeline"
	"github.com/assys/brickguide/pkg/render"
	"github.com/assys/brickguide/pkg/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "brickguide_session"

// Options configures a Server.
type Options struct {
	Runner     *pipeline.Runner
	Sessions   session.Store
	SessionTTL time.Duration
	// Picker lights storage bins; nil keeps an unsignaled 16-bin shelf.
	Picker *pickbylight.Picker
	// Metrics enables /metrics and request instrumentation.
	Metrics *prom.Metrics
	Format  string
	Scale   float64
	Grid    brick.Grid
	Logger  *log.Logger
	Rand    *rand.Rand
}

// Server serves the web application.
type Server struct {
	runner   *pipeline.Runner
	sessions session.Store
	ttl      time.Duration
	picker   *pickbylight.Picker
	metrics  *prom.Metrics
	format   string
	scale    float64
	grid     brick.Grid
	logger   *log.Logger
	hub      *Hub
	tmpl     *template.Template

	// navMu serializes session moves so concurrent acknowledgments
	// cannot skip or lose steps.
	navMu sync.Mutex
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New validates opts and parses the page templates.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.Picker == nil {
		opts.Picker = pickbylight.NewPicker(pickbylight.NewStorage(16), nil)
	}
	if opts.Format == "" {
		opts.Format = string(render.FormatPNG)
	}
	if err := pipeline.ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if opts.Scale == 0 {
		opts.Scale = pipeline.DefaultScale
	}
	if opts.Grid == (brick.Grid{}) {
		opts.Grid = brick.DefaultGrid
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		runner:   opts.Runner,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		picker:   opts.Picker,
		metrics:  opts.Metrics,
		format:   opts.Format,
		scale:    opts.Scale,
		grid:     opts.Grid,
		logger:   opts.Logger,
		hub:      NewHub(opts.Logger),
		tmpl:     tmpl,
		rng:      opts.Rand,
	}, nil
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the routed application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/", s.handleIndex)
	r.Post("/log_in", s.handleLogIn)
	r.Post("/log_off", s.handleLogOff)
	r.Get("/blueprint", s.handleBlueprintGet)
	r.Post("/blueprint", s.handleBlueprintPost)
	r.Get("/control", s.handleControlGet)
	r.Post("/control", s.handleControlPost)
	r.Get("/auto_acknowledge", s.handleAckProbe)
	r.Post("/auto_acknowledge", s.handleAck)
	r.Get("/brick_storage", s.handleStorageGet)
	r.Post("/brick_storage", s.handleStoragePost)
	r.Handle("/ws", s.hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleAPISession)
		r.Get("/blueprints", s.handleAPIList)
		r.Get("/blueprints/{name}", s.handleAPIBlueprint)
		r.Get("/blueprints/{name}/steps/{step}", s.handleAPIStep)
		r.Get("/blueprints/{name}/control/{direction}", s.handleAPIControl)
		r.Get("/blueprints/{name}/support.{format}", s.handleAPISupport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs every request at debug level, failures at warn.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if status >= 500 {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}
