package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fontd/internal/common/fsutil"
	"fontd/internal/config"
)

// defaultCatalogURL is the public web-font directory endpoint.
const defaultCatalogURL = "https://www.googleapis.com/webfonts/v1/webfonts"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	apiKey     string
	catalogURL string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "fontd",
		Short:         "Remote web-font acquisition and caching daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("FONTD_CONFIG"), "Config file (.yaml, .yml, .json, .toml); defaults to FONTD_CONFIG")
	pf.StringVar(&opts.logLevel, "log-level", envOr("FONTD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error (defaults FONTD_LOG_LEVEL or info)")
	pf.StringVar(&opts.logFormat, "log-format", "json", "Log format: json|console")
	pf.StringVar(&opts.apiKey, "api-key", os.Getenv("FONTD_API_KEY"), "Catalog API key; defaults to FONTD_API_KEY")
	pf.StringVar(&opts.catalogURL, "catalog-url", "", "Catalog endpoint (overrides config)")

	root.AddCommand(newServeCmd(opts), newFetchCmd(opts), newCatalogCmd(opts))
	return root
}

// resolve merges the config file with flags. Explicit flags win over the file;
// the file wins over flag defaults.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, zerolog.Nop(), fmt.Errorf("load config %s: %w", o.configPath, err)
		}
		cfg = c
	}
	if o.apiKey != "" && (cfg.APIKey == "" || cmd.Flags().Changed("api-key")) {
		cfg.APIKey = o.apiKey
	}
	if o.catalogURL != "" {
		cfg.CatalogURL = o.catalogURL
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = defaultCatalogURL
	}
	if cfg.RecentPath != "" {
		p, err := fsutil.ExpandHome(cfg.RecentPath)
		if err != nil {
			return cfg, zerolog.Nop(), fmt.Errorf("recent_path: %w", err)
		}
		cfg.RecentPath = p
	}
	if cfg.LogLevel == "" || cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	log, err := newLogger(cfg.LogLevel, o.logFormat)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// newLogger builds the process logger on stderr.
func newLogger(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	switch format {
	case "", "json":
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger(), nil
	case "console":
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}
