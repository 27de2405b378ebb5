// Package cli implements the barcodewheel command-line interface.
//
// This package provides commands for generating barcode wheels from
// product catalogs, rendering saved layouts, converting artifacts, and
// managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Run the full catalog-to-wheel pipeline
//   - layout: Compute wheel geometry and save it as a layout document
//   - visualize: Render a saved layout document
//   - barcode: Encode a single barcode as standalone SVG
//   - preview: Serve the wheel over HTTP
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
//
// # Example
//
//	import "github.com/matzehuels/barcodewheel/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/buildinfo"
	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "barcodewheel"

// Cache backends selectable with --cache.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "barcodewheel",
		Short:        "Barcodewheel turns product catalogs into scannable barcode wheels",
		Long:         `Barcodewheel is a CLI tool for arranging the barcodes of a product catalog around a pie-sliced wheel, rendered as SVG with optional PDF and PNG conversion.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.barcodeCommand())
	root.AddCommand(c.fontsCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the selected cache.
func (c *CLI) newRunner(ctx context.Context, backend string, cfg *Config) (*pipeline.Runner, error) {
	store, err := newCache(ctx, backend, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(ctx context.Context, backend string, cfg *Config) (cache.Cache, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	switch backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	case cacheFile, "":
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("invalid cache backend: %s (must be 'file', 'redis', or 'none')", backend)
	}
}

// cacheBackend resolves the --cache / --no-cache pair against the config.
func cacheBackend(flag string, noCache bool, cfg *Config) string {
	if noCache {
		return cacheNone
	}
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.Cache.Backend != "" {
		return cfg.Cache.Backend
	}
	return cacheFile
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies pipeline defaults up front so flag help text
// shows the real values.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetEncodeDefaults()
	opts.SetWheelDefaults()
	opts.SetRenderDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parsePicks parses a comma-separated list of 1-based product positions
// into the 0-based indices the catalog expects.
func parsePicks(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	picks := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid product position: %q", part)
		}
		if n < 1 {
			return nil, fmt.Errorf("product positions start at 1, got %d", n)
		}
		picks = append(picks, n-1)
	}
	return picks, nil
}
