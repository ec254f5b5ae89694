// Package runtime exposes the orchestrator over HTTP. The boundary protocol
// carries text only: GET /ping answers HEALTHY and POST /invocations takes a
// JSON body with a prompt string and returns the plain-text outcome. Failed
// sub-actions are reported inside the 200 response body; 5xx is reserved for
// infrastructure faults.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/meetingmesh/logging"
)

const (
	// healthyBody is the exact /ping response body.
	healthyBody = "HEALTHY"

	maxBodyBytes  = 1 << 20 // 1 MiB
	defaultAddr   = ":8080"
	shutdownGrace = 10 * time.Second
)

// Handler processes one invocation. It must never return an error; every
// failure mode is expressed in the returned text.
type Handler interface {
	Handle(ctx context.Context, prompt string) string
}

// Options configures the Server.
type Options struct {
	// Addr is the listen address.
	Addr string

	// ShutdownGrace bounds the drain time on graceful shutdown.
	ShutdownGrace time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Server serves the invocation endpoint.
type Server struct {
	handler Handler
	opts    Options
}

// NewServer creates a Server around the given handler.
func NewServer(h Handler, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:          defaultAddr,
		ShutdownGrace: shutdownGrace,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = shutdownGrace
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Server{handler: h, opts: opts}
}

// Routes builds the HTTP handler with logging and panic recovery applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/invocations", s.handleInvocations)
	return s.loggingMiddleware(s.recoverMiddleware(mux))
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the shutdown grace period.
func (s *Server) Run(ctx context.Context) error {
	// Request contexts are deliberately not derived from ctx so in-flight
	// invocations can finish within the shutdown grace period.
	srv := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("runtime: shutdown: %w", err)
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(healthyBody))
}

func (s *Server) handleInvocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Prompt *string `json:"prompt"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		http.Error(w, "request body must be JSON with a string \"prompt\" field", http.StatusBadRequest)
		return
	}
	if body.Prompt == nil {
		http.Error(w, "\"prompt\" field is required", http.StatusBadRequest)
		return
	}

	text := s.handler.Handle(r.Context(), *body.Prompt)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.opts.Logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.opts.Logger.Error("request panicked", "path", r.URL.Path, "recover", fmt.Sprint(rec))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
