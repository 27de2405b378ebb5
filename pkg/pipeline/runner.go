package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/observability"
	"github.com/matzehuels/barcodewheel/pkg/wheel"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use this to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → encode → layout → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
		RunID:     uuid.NewString(),
	}
	r.Logger.Debug("starting pipeline", "run_id", result.RunID, "source", opts.Source())

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source())
	cat, err := Load(ctx, opts)
	productCount := 0
	if cat != nil {
		productCount = cat.Len()
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source(), productCount, time.Since(loadStart), err)
	if err != nil {
		return nil, err
	}
	result.Catalog = cat
	result.CatalogHash = cat.Hash()
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ProductCount = cat.Len()

	r.Logger.Info("loaded catalog",
		"products", cat.Len(),
		"source", opts.Source(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Encode
	encodeStart := time.Now()
	observability.Pipeline().OnEncodeStart(ctx, opts.Symbology, cat.Len())
	symbols, hits, misses, err := Encode(ctx, r.Cache, r.Keyer, cat, opts)
	observability.Pipeline().OnEncodeComplete(ctx, opts.Symbology, cat.Len(), time.Since(encodeStart), err)
	if err != nil {
		return nil, err
	}
	result.Symbols = symbols
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.CacheInfo.SymbolHits = hits
	result.CacheInfo.SymbolMisses = misses

	r.Logger.Info("encoded barcodes",
		"symbols", len(symbols),
		"cached", hits,
		"duration", result.Stats.EncodeTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	slices := opts.resolveSlices(cat.Len())
	observability.Pipeline().OnLayoutStart(ctx, slices)
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, cat, opts)
	observability.Pipeline().OnLayoutComplete(ctx, slices, time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.SliceCount = l.Slices
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"slices", l.Slices,
		"boxes", len(l.Boxes),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, renderHit, err := r.RenderWithCacheInfo(ctx, l, cat, symbols, opts)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
		return nil, err
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	for format, data := range rendered {
		if hasFormat(opts.Formats, format) {
			result.Artifacts[format] = data
		}
	}

	// Stage 5: Convert
	convertStart := time.Now()
	converted, convertHit, err := r.ConvertWithCacheInfo(ctx, l, rendered[FormatSVG], opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Stats.ConvertTime = time.Since(convertStart)
	result.CacheInfo.ConvertHit = convertHit
	for format, data := range converted {
		result.Artifacts[format] = data
	}

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime+result.Stats.ConvertTime)

	return result, nil
}

// LayoutWithCacheInfo computes the wheel geometry with caching and
// returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, cat *catalog.Catalog, opts Options) (*wheel.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	slices := opts.resolveSlices(cat.Len())
	slots, err := opts.resolveSlots()
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cat.Hash(), opts.layoutKeyOpts(slices, slots))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached wheel.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	l, err := buildLayout(slices, slots, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultLayoutTTL)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return l, false, nil
}

// RenderWithCacheInfo produces the svg/json artifacts with caching and
// returns cache hit info. Pictures are only fetched when something
// actually renders.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *wheel.Layout, cat *catalog.Catalog, symbols map[string]*barcode.Symbol, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	wanted := renderFormats(opts.Formats)
	if len(wanted) == 0 {
		return map[string][]byte{}, false, nil
	}
	layoutHash := l.Hash()

	// Try to get all render formats from cache
	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh
	if allCached {
		for _, format := range wanted {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
		}
	}
	if allCached && len(artifacts) == len(wanted) {
		return artifacts, true, nil
	}

	pics, err := LoadPictures(ctx, r.Cache, r.Keyer, cat, opts)
	if err != nil {
		return nil, false, err
	}

	rendered, err := Render(l, cat, symbols, pics, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultArtifactTTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// ConvertWithCacheInfo produces the pdf/png artifacts with caching and
// returns cache hit info.
func (r *Runner) ConvertWithCacheInfo(ctx context.Context, l *wheel.Layout, svg []byte, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	targets := convertFormats(opts.Formats)
	if len(targets) == 0 {
		return map[string][]byte{}, false, nil
	}
	layoutHash := l.Hash()

	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh
	if allCached {
		for _, format := range targets {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				allCached = false
				break
			}
		}
	}
	if allCached && len(artifacts) == len(targets) {
		return artifacts, true, nil
	}

	converted, err := Convert(ctx, svg, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range converted {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultArtifactTTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return converted, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
