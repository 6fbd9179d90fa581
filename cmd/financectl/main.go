package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/app"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/config"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type openFunc func(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*app.Engine, error)

// cli carries what every subcommand needs once the root has loaded config.
type cli struct {
	v       *viper.Viper
	cfgFile string
	open    openFunc
	out     io.Writer

	cfg    *config.Config
	engine *app.Engine
}

func newRootCmd(open openFunc, out io.Writer) *cobra.Command {
	c := &cli{v: config.New(), open: open, out: out}

	root := &cobra.Command{
		Use:   "financectl",
		Short: "Inspect and maintain personal finance data",
		Long: `financectl runs the finance engine against the configured store.
It reads the same environment and config file as the HTTP handler.`,
		PersistentPreRunE: c.init,
		SilenceUsage:      true,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("owner", "", "owner ID (default: OWNER_ID)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (text, json)")
	root.PersistentFlags().String("backend", "", "storage backend (memory, tables)")

	_ = c.v.BindPFlag("notify.owner_id", root.PersistentFlags().Lookup("owner"))
	_ = c.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = c.v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))
	_ = c.v.BindPFlag("storage.backend", root.PersistentFlags().Lookup("backend"))

	root.AddCommand(c.summaryCmd())
	root.AddCommand(c.categoryStatsCmd())
	root.AddCommand(c.trendsCmd())
	root.AddCommand(c.compareCmd())
	root.AddCommand(c.budgetsCmd())
	root.AddCommand(c.goalsCmd())
	root.AddCommand(c.verifyCmd())
	root.AddCommand(c.importCmd())

	return root
}

func (c *cli) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)

	engine, err := c.open(cmd.Context(), cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	c.cfg = cfg
	c.engine = engine
	return nil
}

// owner returns the configured owner or fails when none is set.
func (c *cli) owner() (string, error) {
	if c.cfg.OwnerID == "" {
		return "", fmt.Errorf("no owner: pass --owner or set OWNER_ID")
	}
	return c.cfg.OwnerID, nil
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// periodFlags registers --from and --to on cmd.
func periodFlags(cmd *cobra.Command, from, to *string) {
	cmd.Flags().StringVar(from, "from", "", "first day, YYYY-MM-DD (default: first of this month)")
	cmd.Flags().StringVar(to, "to", "", "last day, YYYY-MM-DD (default: today)")
}

// period resolves --from and --to the way the dashboard query string does.
func (c *cli) period(from, to string) (analytics.Period, error) {
	today := clock.Today(c.engine.Clock)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := today
	if from != "" {
		t, err := models.ParseDate(from)
		if err != nil {
			return analytics.Period{}, fmt.Errorf("%w: --from %q", models.ErrInvalidPeriod, from)
		}
		start = t
	}
	if to != "" {
		t, err := models.ParseDate(to)
		if err != nil {
			return analytics.Period{}, fmt.Errorf("%w: --to %q", models.ErrInvalidPeriod, to)
		}
		end = t
	}
	return analytics.NewPeriod(start, end)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down")
		cancel()
	}()

	err := newRootCmd(app.Open, os.Stdout).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
