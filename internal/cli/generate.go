package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
)

// generateCommand creates the generate command running the full pipeline.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		configPath  string
		output      string
		formatsStr  string
		picksStr    string
		interactive bool
		noCache     bool
		cacheFlag   string
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "generate [catalog.csv]",
		Short: "Generate a barcode wheel from a product catalog",
		Long: `Generate a barcode wheel from a product catalog.

The catalog comes from a CSV file (columns: upc, name, picture), a
MongoDB collection (--mongo-uri), or the config file. Each product gets
one slice carrying its barcode, check-digit readout, name, and picture.

Results are cached locally, so regenerating an unchanged catalog is
fast. Use --refresh to recompute and overwrite cached results.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			applyConfig(cmd, cfg, &opts)
			applySource(args, cfg, &opts)

			if cmd.Flags().Changed("format") {
				opts.Formats = parseFormats(formatsStr)
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			opts.Pick, err = parsePicks(picksStr)
			if err != nil {
				return err
			}

			if interactive && len(opts.Pick) == 0 {
				if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
					printWarning("--interactive needs a terminal, keeping the full catalog")
				} else {
					cat, err := pipeline.Load(ctx, opts)
					if err != nil {
						return fmt.Errorf("load catalog: %w", err)
					}
					picks, ok, err := runProductPicker(cat.Products())
					if err != nil {
						return err
					}
					if !ok {
						printDetail("No selection made")
						return nil
					}
					opts.Pick = picks
				}
			}

			if len(cfg.Font.Files) > 0 {
				fontDir, _ := fontCacheDir()
				shaper, err := typeset.NewShaper(typeset.Options{
					CacheDir: fontDir,
					Fonts:    cfg.Font.Files,
					Bold:     opts.Bold,
					Italic:   opts.Italic,
					Logger:   c.Logger,
				})
				if err != nil {
					return err
				}
				opts.Shaper = shaper
			}

			runner, err := c.newRunner(ctx, cacheBackend(cacheFlag, noCache, cfg), cfg)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			opts.Logger = c.Logger

			spinner := newSpinner(ctx, "Generating wheel...")
			spinner.Start()

			result, err := runner.Execute(ctx, opts)
			if err != nil {
				spinner.StopWithError("Generation failed")
				return err
			}
			spinner.Stop()

			if ctx.Err() != nil {
				return ctx.Err()
			}

			if err := writeArtifacts(artifactWriteParams{
				artifacts: result.Artifacts,
				formats:   opts.Formats,
				input:     opts.CSV,
				output:    output,
				cached:    result.CacheInfo.RenderHit,
				products:  result.Stats.ProductCount,
				slices:    result.Stats.SliceCount,
			}); err != nil {
				return err
			}

			if output != pipeName {
				printNewline()
				preview := appName + " preview"
				if opts.CSV != "" {
					preview += " " + opts.CSV
				}
				printNextStep("Preview", preview)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple; '-' for stdout)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: wheel.toml)")
	cmd.Flags().StringVar(&opts.MongoURI, "mongo-uri", "", "load the catalog from this MongoDB connection string")
	cmd.Flags().StringVar(&opts.MongoDatabase, "mongo-database", "", "MongoDB database holding the catalog")
	cmd.Flags().StringVar(&opts.MongoCollection, "mongo-collection", "", "MongoDB collection holding the catalog")
	cmd.Flags().StringVar(&picksStr, "pick", "", "keep only these products (1-based positions, comma-separated)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick products interactively")
	cmd.Flags().IntVar(&opts.Slices, "slices", opts.Slices, "number of slices (0 means one per product)")
	cmd.Flags().Float64Var(&opts.Size, "size", opts.Size, "canvas size in pixels")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "margin between wheel and canvas edge")
	cmd.Flags().StringVar(&opts.Symbology, "symbology", opts.Symbology, "barcode symbology: upca (default), ean13, code128, qr")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "barcode backend: auto (default), zint, module")
	cmd.Flags().StringVar(&opts.Font, "font", opts.Font, "font family for labels")
	cmd.Flags().BoolVar(&opts.Bold, "bold", false, "use the bold face")
	cmd.Flags().BoolVar(&opts.Italic, "italic", false, "use the italic face")
	cmd.Flags().StringVar(&opts.Foreground, "foreground", "", "bar and text color (default #000000)")
	cmd.Flags().StringVar(&opts.Background, "background", "", "barcode quiet-zone color (default #FFFFFF)")
	cmd.Flags().StringVar(&opts.Canvas, "canvas", "", "canvas background color (default transparent)")
	cmd.Flags().StringVar(&opts.Engine, "engine", opts.Engine, "conversion engine: auto (default), rsvg, chrome")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG supersampling scale")
	cmd.Flags().BoolVar(&opts.NoPictures, "no-pictures", false, "leave product pictures off the wheel")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute cached results and overwrite them")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&cacheFlag, "cache", "", "cache backend: file (default), redis, none")

	return cmd
}
