// Package config loads process settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendTables = "tables"
)

// Config holds every setting the handler process and the CLI read.
type Config struct {
	Port string

	// Storage
	Backend           string
	TableServiceURL   string
	AccountsTable     string
	CategoriesTable   string
	TransactionsTable string
	BudgetsTable      string
	GoalsTable        string

	// Import pipeline
	BlobServiceURL  string
	QueueServiceURL string
	ImportContainer string
	ImportQueue     string

	// Nightly notifications
	OwnerID                string
	UserEmail              string
	CommunicationsEndpoint string
	SenderEmail            string

	// Balance write retries
	RetryAttempts     int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration

	CategoryCacheTTL time.Duration

	LogLevel  string
	LogFormat string
}

// keys maps each viper key to the environment variable it is bound to.
var keys = map[string]string{
	"port":                   "FUNCTIONS_CUSTOMHANDLER_PORT",
	"storage.backend":        "STORAGE_BACKEND",
	"storage.table_url":      "TABLE_SERVICE_URL",
	"storage.accounts":       "ACCOUNTS_TABLE",
	"storage.categories":     "CATEGORIES_TABLE",
	"storage.transactions":   "TRANSACTIONS_TABLE",
	"storage.budgets":        "BUDGETS_TABLE",
	"storage.goals":          "GOALS_TABLE",
	"import.blob_url":        "BLOB_SERVICE_URL",
	"import.queue_url":       "QUEUE_SERVICE_URL",
	"import.container":       "IMPORT_CONTAINER",
	"import.queue":           "IMPORT_QUEUE",
	"notify.owner_id":        "OWNER_ID",
	"notify.user_email":      "USER_EMAIL",
	"notify.endpoint":        "COMMUNICATION_SERVICES_ENDPOINT",
	"notify.sender":          "SENDER_EMAIL",
	"retry.attempts":         "RETRY_ATTEMPTS",
	"retry.initial_delay":    "RETRY_INITIAL_DELAY",
	"retry.max_delay":        "RETRY_MAX_DELAY",
	"analytics.category_ttl": "CATEGORY_CACHE_TTL",
	"logging.level":          "LOG_LEVEL",
	"logging.format":         "LOG_FORMAT",
}

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.accounts", "accounts")
	v.SetDefault("storage.categories", "categories")
	v.SetDefault("storage.transactions", "transactions")
	v.SetDefault("storage.budgets", "budgets")
	v.SetDefault("storage.goals", "goals")
	v.SetDefault("import.container", "imports")
	v.SetDefault("import.queue", "import-queue")
	v.SetDefault("retry.attempts", 5)
	v.SetDefault("retry.initial_delay", 10*time.Millisecond)
	v.SetDefault("retry.max_delay", 500*time.Millisecond)
	v.SetDefault("analytics.category_ttl", 5*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// New returns a viper instance with defaults and environment bindings in
// place. A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	for key, env := range keys {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads cfgFile (if set) into v and decodes the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		Port:              v.GetString("port"),
		Backend:           v.GetString("storage.backend"),
		TableServiceURL:   v.GetString("storage.table_url"),
		AccountsTable:     v.GetString("storage.accounts"),
		CategoriesTable:   v.GetString("storage.categories"),
		TransactionsTable: v.GetString("storage.transactions"),
		BudgetsTable:      v.GetString("storage.budgets"),
		GoalsTable:        v.GetString("storage.goals"),

		BlobServiceURL:  v.GetString("import.blob_url"),
		QueueServiceURL: v.GetString("import.queue_url"),
		ImportContainer: v.GetString("import.container"),
		ImportQueue:     v.GetString("import.queue"),

		OwnerID:                v.GetString("notify.owner_id"),
		UserEmail:              v.GetString("notify.user_email"),
		CommunicationsEndpoint: v.GetString("notify.endpoint"),
		SenderEmail:            v.GetString("notify.sender"),

		RetryAttempts:     v.GetInt("retry.attempts"),
		RetryInitialDelay: v.GetDuration("retry.initial_delay"),
		RetryMaxDelay:     v.GetDuration("retry.max_delay"),

		CategoryCacheTTL: v.GetDuration("analytics.category_ttl"),

		LogLevel:  strings.ToLower(v.GetString("logging.level")),
		LogFormat: strings.ToLower(v.GetString("logging.format")),
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case BackendMemory:
	case BackendTables:
		if c.TableServiceURL == "" {
			errors = append(errors, "TABLE_SERVICE_URL is required when using the tables backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of [%s %s]", c.Backend, BackendMemory, BackendTables))
	}

	if c.RetryAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid retry attempts %d: must be at least 1", c.RetryAttempts))
	}
	if c.RetryInitialDelay < 0 || c.RetryMaxDelay < c.RetryInitialDelay {
		errors = append(errors, fmt.Sprintf("invalid retry delays %v..%v", c.RetryInitialDelay, c.RetryMaxDelay))
	}
	if c.CategoryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid category cache TTL %v: must not be negative", c.CategoryCacheTTL))
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ImportEnabled reports whether both import endpoints are configured.
func (c *Config) ImportEnabled() bool {
	return c.BlobServiceURL != "" && c.QueueServiceURL != ""
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c *Config) Logger() (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch c.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	case "text", "":
		h = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	return slog.New(h), nil
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s", level)
}
