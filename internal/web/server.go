package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/minitcraft/minit/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// LockFile is the name of the lock held by a running preview server.
const LockFile = "serve.lock"

// NewServer creates and configures the HTTP server for the minutes preview.
func NewServer(db *sql.DB, cfg *config.Config, version, bind string, port int) (*http.Server, error) {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	renderer, err := NewRenderer(templateSub, version)
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		renderer: renderer,
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           h.routes(staticSub),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func (h *Handlers) routes(static fs.FS) http.Handler {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/meetings", http.StatusFound)
	})
	mux.HandleFunc("GET /meetings", h.HandleList)
	mux.HandleFunc("GET /meetings/{id}", h.HandleDetail)
	mux.HandleFunc("GET /meetings/{id}/record.json", h.HandleRecord)
	mux.HandleFunc("GET /meetings/{id}/next.json", h.HandleNextDraft)
	mux.HandleFunc("GET /meetings/{id}/document/{format}", h.HandleDocument)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return logRequests(securityHeaders(mux))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Default().Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// AcquireLock takes the preview server lock in baseDir. Only one preview
// server may run against a base directory at a time.
func AcquireLock(baseDir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(baseDir, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", LockFile, err)
	}
	if !ok {
		return nil, fmt.Errorf("another preview server is already running for %s", baseDir)
	}
	return lock, nil
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger := slog.Default()
	logger.Info("minit preview running", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
