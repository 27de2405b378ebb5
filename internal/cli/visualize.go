package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	renderwheel "github.com/matzehuels/barcodewheel/pkg/render/wheel"
	"github.com/matzehuels/barcodewheel/pkg/wheel"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		configPath string
		noCache    bool
		cacheFlag  string
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a wheel from a saved layout document",
		Long: `Render a wheel from a saved layout document.

The visualize command takes a layout.json file (produced by 'layout' or
'generate -f json') and renders it to SVG, PDF, or PNG. The document
records the products, font, colors, and barcode settings it was
computed with; flags override the recorded values.

Use 'generate' to go directly from a catalog to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			doc, err := renderwheel.ParseJSON(data)
			if err != nil {
				return fmt.Errorf("parse layout %s: %w", args[0], err)
			}

			// Recorded document values apply unless a flag overrides them.
			flags := cmd.Flags()
			if !flags.Changed("font") && doc.Font != "" {
				opts.Font = doc.Font
			}
			if !flags.Changed("foreground") && doc.Foreground != "" {
				opts.Foreground = doc.Foreground
			}
			if !flags.Changed("background") && doc.Background != "" {
				opts.Background = doc.Background
			}
			if !flags.Changed("symbology") && doc.Symbology != "" {
				opts.Symbology = doc.Symbology
			}
			if !flags.Changed("backend") && doc.Backend != "" {
				opts.Backend = doc.Backend
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], doc, opts, cfg, output, cacheBackend(cacheFlag, noCache, cfg))
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple; '-' for stdout)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: wheel.toml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&cacheFlag, "cache", "", "cache backend: file (default), redis, none")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.Symbology, "symbology", opts.Symbology, "barcode symbology (default: recorded in the document)")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "barcode backend (default: recorded in the document)")
	cmd.Flags().StringVar(&opts.Font, "font", opts.Font, "font family (default: recorded in the document)")
	cmd.Flags().StringVar(&opts.Foreground, "foreground", "", "bar and text color (default: recorded in the document)")
	cmd.Flags().StringVar(&opts.Background, "background", "", "barcode quiet-zone color (default: recorded in the document)")
	cmd.Flags().StringVar(&opts.Canvas, "canvas", "", "canvas background color (default transparent)")
	cmd.Flags().StringVar(&opts.Engine, "engine", opts.Engine, "conversion engine: auto (default), rsvg, chrome")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG supersampling scale")
	cmd.Flags().BoolVar(&opts.NoPictures, "no-pictures", false, "leave product pictures off the wheel")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute cached results and overwrite them")

	return cmd
}

// runVisualize rebuilds the catalog from the document, encodes any
// missing symbols, and renders the requested formats.
func (c *CLI) runVisualize(ctx context.Context, input string, doc *renderwheel.Document, opts pipeline.Options, cfg *Config, output, backend string) error {
	if len(doc.Products) == 0 {
		return fmt.Errorf("layout document %s has no products", input)
	}
	cat, err := catalog.New(doc.Products)
	if err != nil {
		return fmt.Errorf("catalog from layout: %w", err)
	}

	runner, err := c.newRunner(ctx, backend, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Rendering wheel...")
	spinner.Start()

	symbols := map[string]*barcode.Symbol{}
	if _, ok := doc.Layout.Box(wheel.SlotBarcode); ok {
		symbols, _, _, err = pipeline.Encode(ctx, runner.Cache, runner.Keyer, cat, opts)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return err
		}
	}

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc.Layout, cat, symbols, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("visualize: %w", err)
	}

	converted, _, err := runner.ConvertWithCacheInfo(ctx, doc.Layout, artifacts[pipeline.FormatSVG], opts)
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return fmt.Errorf("visualize: %w", err)
	}
	for format, data := range converted {
		artifacts[format] = data
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cached:    cacheHit,
		products:  cat.Len(),
		slices:    doc.Layout.Slices,
	})
}
