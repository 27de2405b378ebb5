package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
)

// defaultPreviewAddr is used when neither --addr nor the config file
// names a listen address.
const defaultPreviewAddr = ":8080"

// previewShutdownTimeout bounds how long in-flight requests may run
// after Ctrl+C.
const previewShutdownTimeout = 5 * time.Second

// previewPage embeds the freshly rendered SVG so reloading the browser
// shows the current wheel.
const previewPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>barcodewheel preview</title>
<style>
  body { margin: 0; display: flex; flex-direction: column; align-items: center;
         font-family: sans-serif; background: #f4f4f4; }
  nav { padding: 0.75rem; }
  img { max-width: 90vmin; max-height: 90vmin; }
</style>
</head>
<body>
<nav><a href="/wheel.svg">svg</a> &middot; <a href="/wheel.pdf">pdf</a></nav>
<img src="/wheel.svg" alt="barcode wheel">
</body>
</html>
`

// previewCommand creates the preview command serving the wheel over HTTP.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		noCache    bool
		cacheFlag  string
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "preview [catalog.csv]",
		Short: "Serve the wheel over HTTP, re-rendering on each request",
		Long: `Serve the wheel over HTTP, re-rendering on each request.

Routes:

  /           HTML page embedding the wheel
  /wheel.svg  the wheel as SVG
  /wheel.pdf  the wheel as PDF
  /healthz    liveness probe

Every request runs the full pipeline against the current catalog, so
editing the CSV and reloading the browser shows the change. Unchanged
stages still come from the cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			applyConfig(cmd, cfg, &opts)
			applySource(args, cfg, &opts)

			if addr == "" {
				addr = cfg.Preview.Addr
			}
			if addr == "" {
				addr = defaultPreviewAddr
			}

			// The shaper scans system fonts on construction. Build it
			// once here so request handlers reuse the scan.
			fontDir, _ := fontCacheDir()
			shaper, err := typeset.NewShaper(typeset.Options{
				CacheDir: fontDir,
				Fonts:    cfg.Font.Files,
				Bold:     opts.Bold,
				Italic:   opts.Italic,
				Logger:   c.Logger,
			})
			if err != nil {
				printWarning("font scan failed, every request will rescan: %v", err)
			} else {
				opts.Shaper = shaper
			}

			runner, err := c.newRunner(ctx, cacheBackend(cacheFlag, noCache, cfg), cfg)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			opts.Logger = c.Logger

			// Surface catalog problems now instead of on the first request.
			if _, err := pipeline.Load(ctx, opts); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			return c.runPreview(ctx, runner, opts, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: wheel.toml)")
	cmd.Flags().StringVar(&opts.MongoURI, "mongo-uri", "", "load the catalog from this MongoDB connection string")
	cmd.Flags().StringVar(&opts.MongoDatabase, "mongo-database", "", "MongoDB database holding the catalog")
	cmd.Flags().StringVar(&opts.MongoCollection, "mongo-collection", "", "MongoDB collection holding the catalog")
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
	cmd.Flags().StringVar(&opts.Engine, "engine", opts.Engine, "conversion engine for /wheel.pdf: auto (default), rsvg, chrome")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG supersampling scale")
	cmd.Flags().BoolVar(&opts.NoPictures, "no-pictures", false, "leave product pictures off the wheel")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute cached results and overwrite them")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&cacheFlag, "cache", "", "cache backend: file (default), redis, none")

	return cmd
}

// runPreview serves the handler until the context is cancelled.
func (c *CLI) runPreview(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: c.previewHandler(runner, opts),
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			return
		}
		errc <- nil
	}()

	printInfo("Preview server listening on %s", addr)
	printLink(previewURL(addr))
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), previewShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errc
	return ctx.Err()
}

// previewHandler builds the preview routes. Split from runPreview so
// tests can exercise the routes without a listening server.
func (c *CLI) previewHandler(runner *pipeline.Runner, opts pipeline.Options) http.Handler {
	serveWheel := func(format, contentType string) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			reqOpts := opts
			reqOpts.Formats = []string{format}

			result, err := runner.Execute(req.Context(), reqOpts)
			if err != nil {
				c.Logger.Error("preview render failed", "format", format, "err", err)
				http.Error(w, errors.UserMessage(err), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", contentType)
			w.Header().Set("Cache-Control", "no-store")
			w.Write(result.Artifacts[format])
			c.Logger.Debug("served wheel",
				"format", format,
				"bytes", len(result.Artifacts[format]),
				"duration", time.Since(start))
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, previewPage)
	})
	r.Get("/wheel.svg", serveWheel(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/wheel.pdf", serveWheel(pipeline.FormatPDF, "application/pdf"))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})

	return r
}

// previewURL turns a listen address into something clickable.
func previewURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
