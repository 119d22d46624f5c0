package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvmeta/internal/cache"
	"github.com/vmunix/tvmeta/internal/config"
	"github.com/vmunix/tvmeta/pkg/tvdb"
)

var version = "dev"

var (
	configPath string
	langFlag   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "tvmeta",
	Short: "Cached TVDB metadata lookup",
	Long: `tvmeta - cached TVDB metadata lookup

Searches series, fetches episode listings in aired, DVD or absolute
order, and resolves artwork, with persistent response caching.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "Metadata language (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("tvmeta {{.Version}}\n")
}

// app bundles everything a command needs after setup.
type app struct {
	client *tvdb.Client
	store  *cache.Store
	lang   string
	log    *slog.Logger
}

// setup loads config, opens the cache store and builds the client.
func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}

	lang := cfg.TVDB.Language
	if langFlag != "" {
		lang = langFlag
	}

	client := tvdb.New(cfg.TVDB.APIKey,
		tvdb.WithStore(store),
		tvdb.WithLogger(logger),
	)

	return &app{client: client, store: store, lang: lang, log: logger}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing cache store", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
