package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	renderwheel "github.com/matzehuels/barcodewheel/pkg/render/wheel"
)

// layoutCommand creates the layout command for computing wheel geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		configPath string
		output     string
		noCache    bool
		cacheFlag  string
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [catalog.csv]",
		Short: "Compute wheel geometry from a catalog",
		Long: `Compute wheel geometry from a product catalog.

The layout command loads the catalog and computes slice and slot
positions without rendering anything. The output is a layout.json
document (same format as 'generate -f json') that can be rendered
later with the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			applyConfig(cmd, cfg, &opts)
			applySource(args, cfg, &opts)
			return c.runLayout(cmd.Context(), opts, cfg, output, cacheBackend(cacheFlag, noCache, cfg))
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json; '-' for stdout)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: wheel.toml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&cacheFlag, "cache", "", "cache backend: file (default), redis, none")

	// Source flags
	cmd.Flags().StringVar(&opts.MongoURI, "mongo-uri", "", "load the catalog from this MongoDB connection string")
	cmd.Flags().StringVar(&opts.MongoDatabase, "mongo-database", "", "MongoDB database holding the catalog")
	cmd.Flags().StringVar(&opts.MongoCollection, "mongo-collection", "", "MongoDB collection holding the catalog")

	// Geometry flags
	cmd.Flags().IntVar(&opts.Slices, "slices", opts.Slices, "number of slices (0 means one per product)")
	cmd.Flags().Float64Var(&opts.Size, "size", opts.Size, "canvas size in pixels")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "margin between wheel and canvas edge")

	// Recorded in the document for 'visualize'
	cmd.Flags().StringVar(&opts.Symbology, "symbology", opts.Symbology, "barcode symbology recorded in the document")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "barcode backend recorded in the document")
	cmd.Flags().StringVar(&opts.Font, "font", opts.Font, "font family recorded in the document")
	cmd.Flags().StringVar(&opts.Foreground, "foreground", "", "foreground color recorded in the document")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color recorded in the document")

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute the cached layout and overwrite it")

	return cmd
}

// runLayout loads the catalog, computes the geometry, and writes the
// layout document.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, cfg *Config, output, backend string) error {
	cat, err := pipeline.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	runner, err := c.newRunner(ctx, backend, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, cat, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	doc, err := renderwheel.RenderJSON(l,
		renderwheel.WithJSONProducts(cat.Products()),
		renderwheel.WithJSONFont(opts.Font),
		renderwheel.WithJSONColors(opts.Foreground, opts.Background),
		renderwheel.WithJSONBarcode(opts.Symbology, opts.Backend),
	)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.CSV) + ".layout.json"
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	if _, err := out.Write(doc); err != nil {
		out.Close()
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if outputPath == pipeName {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(cat.Len(), l.Slices, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
