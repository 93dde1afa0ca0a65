// Package server exposes the assistant operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/codepix/codepix/internal/assist"
	"github.com/codepix/codepix/internal/logger"
	"github.com/codepix/codepix/internal/metrics"
	"github.com/codepix/codepix/internal/provider"
	"github.com/codepix/codepix/internal/version"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

const (
	routeGenerate  = "/api/ai/generate"
	routeExplain   = "/api/ai/explain"
	routeTranslate = "/api/ai/translate"
	routeOptimize  = "/api/ai/optimize"
	routeStatus    = "/api/status"
	routeHealth    = "/healthz"
	routeMetrics   = "/metrics"
)

// Assistant runs the code-assistant operations.
type Assistant interface {
	Generate(ctx context.Context, req assist.GenerateRequest) (assist.Result, error)
	Explain(ctx context.Context, req assist.ExplainRequest) (assist.Result, error)
	Translate(ctx context.Context, req assist.TranslateRequest) (assist.Result, error)
	Optimize(ctx context.Context, req assist.OptimizeRequest) (assist.Result, error)
}

// ProviderStatus reports which providers were configured at startup.
type ProviderStatus interface {
	Configured() map[provider.Key]bool
}

type Options struct {
	CORSOrigins  []string
	MaxBodyBytes int64
	Metrics      *metrics.Recorder
	Logger       *slog.Logger
}

type Server struct {
	assistant Assistant
	providers ProviderStatus
	opts      Options
	started   time.Time
	log       *slog.Logger
}

func New(a Assistant, providers ProviderStatus, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}
	return &Server{
		assistant: a,
		providers: providers,
		opts:      opts,
		started:   timeNow(),
		log:       log,
	}
}

var timeNow = time.Now

// Handler returns the full middleware chain around the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(routeGenerate, allow(s.handleGenerate, http.MethodPost))
	mux.HandleFunc(routeExplain, allow(s.handleExplain, http.MethodPost))
	mux.HandleFunc(routeTranslate, allow(s.handleTranslate, http.MethodPost))
	mux.HandleFunc(routeOptimize, allow(s.handleOptimize, http.MethodPost))
	mux.HandleFunc(routeStatus, allow(s.handleStatus, http.MethodGet, http.MethodPost))
	mux.HandleFunc(routeHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.Metrics != nil {
		mux.Handle(routeMetrics, s.opts.Metrics.Handler())
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, "Not found", http.StatusNotFound)
	})

	var h http.Handler = mux
	h = cors(s.opts.CORSOrigins)(h)
	if s.opts.Metrics != nil {
		h = observe(s.opts.Metrics)(h)
	}
	h = accessLog(h)
	h = requestID(s.log)(h)
	h = recoverer(s.log)(h)
	return h
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %q: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", "addr", ln.Addr().String(), "version", version.Version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func allow(h http.HandlerFunc, methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				h(w, r)
				return
			}
		}
		w.Header().Set("Allow", strings.Join(methods, ", "))
		jsonErr(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
