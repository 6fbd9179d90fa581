// Package app assembles the engine from a store and configuration. The HTTP
// process and the CLI share it.
package app

import (
	"context"
	"log/slog"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/category"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/config"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/handler"
	"github.com/rocjay1/rm-finance/internal/importer"
	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/services"
)

// Engine is the wired set of core services over one store.
type Engine struct {
	Store      services.Store
	Ledger     *ledger.Ledger
	Budgets    *budget.Service
	Goals      *goal.Service
	Categories *category.Service
	Analytics  *analytics.Service
	Importer   *importer.Importer
	Metrics    *metrics.Metrics
	Clock      clock.Clock
}

// NewEngine wires the core services over store.
func NewEngine(store services.Store, cfg *config.Config, m *metrics.Metrics, clk clock.Clock) *Engine {
	l := ledger.New(store,
		ledger.WithRetryOptions(ledger.RetryOptions{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryInitialDelay,
			MaxDelay:     cfg.RetryMaxDelay,
		}),
		ledger.WithMetrics(m),
	)
	return &Engine{
		Store:      store,
		Ledger:     l,
		Budgets:    budget.NewService(store, clk, m),
		Goals:      goal.NewService(store, clk),
		Categories: category.NewService(store),
		Analytics:  analytics.NewService(store, clk, m, cfg.CategoryCacheTTL),
		Importer:   importer.New(store, l, m),
		Metrics:    m,
		Clock:      clk,
	}
}

// Open loads the store cfg selects and wires an engine over it.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Engine, error) {
	store, err := services.NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("store opened", "backend", cfg.Backend)
	return NewEngine(store, cfg, m, clock.System{}), nil
}

// Handlers returns the HTTP dependencies for the engine. The import and
// notification clients are attached only when configured.
func (e *Engine) Handlers(cfg *config.Config) (*handler.Dependencies, error) {
	deps := &handler.Dependencies{
		Store:      e.Store,
		Ledger:     e.Ledger,
		Budgets:    e.Budgets,
		Goals:      e.Goals,
		Categories: e.Categories,
		Analytics:  e.Analytics,
		Importer:   e.Importer,
		Metrics:    e.Metrics,
		Clock:      e.Clock,
		Import:     handler.ImportSettings{Container: cfg.ImportContainer, Queue: cfg.ImportQueue},
		Notify:     handler.NotifySettings{OwnerID: cfg.OwnerID, UserEmail: cfg.UserEmail},
	}

	if cfg.ImportEnabled() {
		blob, err := services.NewBlobService(cfg.BlobServiceURL)
		if err != nil {
			return nil, err
		}
		queue, err := services.NewQueueService(cfg.QueueServiceURL)
		if err != nil {
			return nil, err
		}
		deps.Blob = blob
		deps.Queue = queue
	} else {
		slog.Warn("BLOB_SERVICE_URL or QUEUE_SERVICE_URL not set; CSV import disabled")
	}

	if cfg.CommunicationsEndpoint != "" {
		email, err := services.NewEmailService(cfg.CommunicationsEndpoint, cfg.SenderEmail, nil)
		if err != nil {
			slog.Warn("Failed to init EmailService (continuing anyway)", "error", err)
		} else {
			deps.Email = email
		}
	}
	return deps, nil
}
