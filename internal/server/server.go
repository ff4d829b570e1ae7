/*
Package server is the interactive HTTP front-end of the payslip tool.

ROUTES:

	GET  /healthz          liveness
	POST /api/preview      parse an uploaded sheet, return records and skips
	POST /api/generate     parse an upload and render payslips to the output directory
	GET  /api/emails       list the address book, or look up one address
	                       with ?seq=, ?account_no=, ?name=
	PUT  /api/emails       remember an address
	GET  /metrics          Prometheus metrics

UPLOADS:

	Either multipart/form-data with a "file" part, or the raw CSV as the
	request body (name taken from ?name=).

The server owns no payroll logic: every route delegates to the engine,
the generator or the address book.
*/
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lezzdif22/payslip/internal/logging"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/preview", h.Preview)
		r.Post("/generate", h.Generate)
		r.Route("/emails", func(r chi.Router) {
			r.Get("/", h.GetEmails)
			r.Put("/", h.PutEmail)
		})
	})

	return r
}

func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				logging.F("method", r.Method),
				logging.F("path", r.URL.Path),
				logging.F(logging.FieldStatus, ww.Status()),
				logging.F(logging.FieldDuration, time.Since(start).String()),
				logging.F("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// Server runs the router until its context is cancelled.
type Server struct {
	http   *http.Server
	logger logging.Logger
}

// New creates a Server listening on addr.
func New(addr string, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", logging.F("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
