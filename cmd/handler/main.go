package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rocjay1/rm-finance/internal/app"
	"github.com/rocjay1/rm-finance/internal/config"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg, err := config.Load(config.New(), os.Getenv("FINANCE_CONFIG"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}
	logger, err := cfg.Logger()
	if err != nil {
		slog.Error("Failed to init logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// Initialize Services
	m := metrics.New()
	engine, err := app.Open(context.Background(), cfg, m)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}

	deps, err := engine.Handlers(cfg)
	if err != nil {
		slog.Error("Failed to init import services", "error", err)
		os.Exit(1)
	}

	mux := deps.Routes()
	mux.Handle("GET /metrics", m.Handler())

	loggedMux := loggingMiddleware(mux)

	slog.Info("Starting server", "port", cfg.Port, "backend", cfg.Backend)
	if err := http.ListenAndServe(":"+cfg.Port, loggedMux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", duration)
	})
}
