package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pbaille/zhouyi/internal/config"
	"github.com/pbaille/zhouyi/internal/interpret"
	"github.com/pbaille/zhouyi/internal/logging"
	"github.com/pbaille/zhouyi/internal/metrics"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/pbaille/zhouyi/internal/sessions"
	"github.com/pbaille/zhouyi/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// options are the persistent flags, layered over the environment config.
type options struct {
	dbPath   string
	lang     string
	provider string
	logLevel string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	// Default database location
	defaultDB := cfg.DBPath
	if defaultDB == "" {
		home, _ := os.UserHomeDir()
		defaultDB = filepath.Join(home, ".zhouyi", "zhouyi.db")
	}

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "zhouyi",
		Short:         "Cast and interpret hexagrams of the Book of Changes",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDB, "history database path")
	rootCmd.PersistentFlags().StringVarP(&opts.lang, "lang", "l", cfg.Language, "language: en or zh")
	rootCmd.PersistentFlags().StringVar(&opts.provider, "provider", cfg.Provider, "interpretation provider: anthropic, openai, grok, gemini or offline")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(castCmd(cfg, opts))
	rootCmd.AddCommand(hexagramCmd(opts))
	rootCmd.AddCommand(trigramsCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(showCmd(opts))
	rootCmd.AddCommand(serveCmd(cfg, opts))

	return rootCmd
}

func (o *options) language() oracle.Language {
	return oracle.ParseLanguage(o.lang)
}

func (o *options) logger() *slog.Logger {
	return logging.New(logging.ParseLevel(o.logLevel))
}

func getStore(dbPath string) (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

// newProvider builds the configured provider, falling back to the
// offline reading when no API key is available.
func newProvider(cfg config.Config, name string, logger *slog.Logger) (interpret.Provider, error) {
	p, err := interpret.New(interpret.Config{
		Provider: name,
		APIKey:   cfg.KeyFor(name),
		Model:    cfg.Model,
		Endpoint: cfg.ProviderURL,
		Timeout:  cfg.ProviderTimeout,
	})
	if errors.Is(err, interpret.ErrMissingAPIKey) {
		logger.Warn("no API key, using offline readings", "provider", name)
		return interpret.Offline{}, nil
	}
	return p, err
}

// newSessionStore picks redis when an address is configured.
func newSessionStore(cfg config.Config, logger *slog.Logger) sessions.Store {
	if cfg.Redis.Addr == "" {
		return sessions.NewMemoryStore()
	}
	logger.Info("using redis session store", "addr", cfg.Redis.Addr)
	return sessions.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		sessions.WithTTL(cfg.Redis.TTL))
}

// app is the wiring shared by cast and serve.
type app struct {
	history  *store.Store
	sessions *sessions.Manager
	metrics  *metrics.Metrics
	logger   *slog.Logger
	provider string
}

func newApp(cfg config.Config, opts *options, logger *slog.Logger, sessionStore sessions.Store, reg prometheus.Registerer) (*app, error) {
	history, err := getStore(opts.dbPath)
	if err != nil {
		return nil, err
	}

	provider, err := newProvider(cfg, opts.provider, logger)
	if err != nil {
		history.Close()
		return nil, err
	}

	mt := metrics.New(reg)
	interpreter := interpret.NewInterpreter(provider,
		interpret.WithSegmenter(oracle.MarkerSegmenter{SummaryLength: cfg.SummaryLength}),
		interpret.WithMetrics(mt),
		interpret.WithLogger(logger),
	)

	m := sessions.NewManager(sessionStore,
		sessions.WithInterpreter(interpreter),
		sessions.WithHooks(store.HistoryHooks(history)),
		sessions.WithMetrics(mt),
		sessions.WithLogger(logger),
	)

	return &app{
		history:  history,
		sessions: m,
		metrics:  mt,
		logger:   logger,
		provider: provider.Name(),
	}, nil
}

func (a *app) Close() error {
	return a.history.Close()
}
