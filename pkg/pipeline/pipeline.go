// Package pipeline provides the core generation pipeline for barcodewheel.
//
// This package implements the complete load → encode → layout → render →
// convert pipeline shared by the CLI and the preview server. By centralizing
// this logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Load: Read the product catalog from CSV, MongoDB, or inline products
//  2. Encode: Generate one barcode symbol per distinct UPC value
//  3. Layout: Compute the wheel geometry and per-slice slot boxes
//  4. Render: Produce the SVG and JSON artifacts
//  5. Convert: Turn the SVG into PDF and PNG where requested
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    CSV:     "products.csv",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	cat, err := pipeline.Load(ctx, opts)
//
//	// Layout with a loaded catalog
//	l, err := pipeline.BuildLayout(cat, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/render"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
	"github.com/matzehuels/barcodewheel/pkg/wheel"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Preview Server
// =============================================================================

const (
	// DefaultSize is the default canvas edge length in pixels. The
	// canvas is always square with the wheel centered on it.
	DefaultSize = 600.0

	// DefaultMargin is the default gap between the pie outline and the
	// canvas edge in pixels.
	DefaultMargin = 10.0

	// DefaultSymbology is the default barcode symbology.
	DefaultSymbology = string(barcode.UPCA)

	// DefaultBackend selects the barcode encoder. "auto" uses zint when
	// the binary is installed and the built-in encoder otherwise.
	DefaultBackend = "auto"

	// DefaultEngine selects the SVG conversion engine. "auto" prefers
	// rsvg-convert and falls back to Chrome.
	DefaultEngine = "auto"

	// DefaultFont is the font family used for label text.
	DefaultFont = "sans-serif"

	// DefaultScale is the default PNG supersampling factor.
	DefaultScale = 2.0

	// DefaultEncodeWorkers bounds concurrent barcode encoding.
	DefaultEncodeWorkers = 4

	// MinSlices is the smallest wheel the geometry supports.
	MinSlices = 2
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatPDF:  true,
	FormatPNG:  true,
}

// Source kind constants, used for logging and hooks.
const (
	SourceCSV    = "csv"
	SourceMongo  = "mongo"
	SourceInline = "inline"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for the preview server.
type Options struct {
	// Catalog options. Exactly one of CSV, MongoURI, or Products must
	// be set.
	CSV             string            `json:"csv,omitempty"`
	MongoURI        string            `json:"mongo_uri,omitempty"`
	MongoDatabase   string            `json:"mongo_database,omitempty"`
	MongoCollection string            `json:"mongo_collection,omitempty"`
	Products        []catalog.Product `json:"products,omitempty"`
	Pick            []int             `json:"pick,omitempty"` // product indices to keep, in order

	// Wheel options
	Slices int                       `json:"slices,omitempty"` // 0 means one slice per product
	Size   float64                   `json:"size,omitempty"`
	Margin float64                   `json:"margin,omitempty"`
	Slots  map[string]wheel.Override `json:"slots,omitempty"`

	// Barcode options
	Symbology string `json:"symbology,omitempty"`
	Backend   string `json:"backend,omitempty"`

	// Text options
	Font   string `json:"font,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Foreground string   `json:"foreground,omitempty"`
	Background string   `json:"background,omitempty"`
	Canvas     string   `json:"canvas,omitempty"`
	Engine     string   `json:"engine,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	NoPictures bool     `json:"no_pictures,omitempty"`

	// Refresh bypasses cached results and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger     `json:"-"`
	Shaper    *typeset.Shaper `json:"-"`
	Encoder   barcode.Encoder `json:"-"`
	Converter render.Engine   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Catalog is the loaded product catalog.
	Catalog *catalog.Catalog

	// CatalogHash is the content hash of the catalog.
	CatalogHash string

	// Layout is the computed wheel geometry.
	Layout *wheel.Layout

	// Symbols holds the generated barcode symbols keyed by UPC value.
	Symbols map[string]*barcode.Symbol

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo

	// RunID uniquely identifies this pipeline run in logs.
	RunID string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ProductCount int
	SliceCount   int
	LoadTime     time.Duration
	EncodeTime   time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
	ConvertTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SymbolHits   int  // Symbols served from cache
	SymbolMisses int  // Symbols encoded fresh
	LayoutHit    bool // Whether the layout came from cache
	RenderHit    bool // Whether the svg/json artifacts came from cache
	ConvertHit   bool // Whether the pdf/png artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForEncode(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that exactly one catalog source is configured.
func (o *Options) ValidateForLoad() error {
	sources := 0
	if o.CSV != "" {
		sources++
	}
	if o.MongoURI != "" {
		sources++
	}
	if len(o.Products) > 0 {
		sources++
	}
	switch {
	case sources == 0:
		return errors.New(errors.ErrCodeInvalidConfig,
			"a catalog source is required: csv path, mongodb uri, or inline products")
	case sources > 1:
		return errors.New(errors.ErrCodeInvalidConfig,
			"choose a single catalog source")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Source returns the kind of catalog source in use.
func (o *Options) Source() string {
	switch {
	case o.CSV != "":
		return SourceCSV
	case o.MongoURI != "":
		return SourceMongo
	default:
		return SourceInline
	}
}

// SetEncodeDefaults sets default values for barcode encoding.
func (o *Options) SetEncodeDefaults() {
	if o.Symbology == "" {
		o.Symbology = DefaultSymbology
	}
	if o.Backend == "" {
		o.Backend = DefaultBackend
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForEncode validates and normalizes the barcode options.
func (o *Options) ValidateForEncode() error {
	o.SetEncodeDefaults()
	sym, err := barcode.ParseSymbology(o.Symbology)
	if err != nil {
		return err
	}
	o.Symbology = string(sym)
	return nil
}

// SetWheelDefaults sets default values for the wheel geometry.
func (o *Options) SetWheelDefaults() {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetWheelDefaults()
	if o.Slices != 0 && o.Slices < MinSlices {
		return errors.New(errors.ErrCodeInvalidLayout,
			"a wheel needs at least %d slices, got %d", MinSlices, o.Slices)
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "margin cannot be negative")
	}
	if o.Margin*2 >= o.Size {
		return errors.New(errors.ErrCodeInvalidLayout,
			"margin %g leaves no radius on a %gpx canvas", o.Margin, o.Size)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Font == "" {
		o.Font = DefaultFont
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// resolveSlices returns the slice count for a catalog of the given size.
func (o *Options) resolveSlices(products int) int {
	if o.Slices > 0 {
		return o.Slices
	}
	if products < MinSlices {
		return MinSlices
	}
	return products
}

// resolveSlots returns the slot table with any overrides applied.
func (o *Options) resolveSlots() ([]wheel.Slot, error) {
	slots := wheel.DefaultSlots()
	if len(o.Slots) == 0 {
		return slots, nil
	}
	return wheel.ApplyOverrides(slots, o.Slots)
}

// SymbolKeyOpts returns cache key options for barcode encoding.
func (o *Options) SymbolKeyOpts() cache.SymbolKeyOpts {
	return cache.SymbolKeyOpts{
		Backend: o.Backend,
	}
}

// layoutKeyOpts returns cache key options for the resolved geometry.
func (o *Options) layoutKeyOpts(slices int, slots []wheel.Slot) cache.LayoutKeyOpts {
	data, _ := json.Marshal(slots)
	return cache.LayoutKeyOpts{
		Slices: slices,
		Size:   o.Size,
		Margin: o.Margin,
		Slots:  string(data),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		FontFamily: o.Font,
		Foreground: o.Foreground,
		Background: o.Background,
		Scale:      o.Scale,
		Engine:     o.Engine,
	}
}

// =============================================================================
// Format Helpers
// =============================================================================

// hasFormat reports whether format is in formats.
func hasFormat(formats []string, format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

// renderFormats returns the formats produced by the render stage. The
// svg is always rendered when pdf or png is requested, since the
// conversion stage consumes it.
func renderFormats(formats []string) []string {
	var out []string
	if hasFormat(formats, FormatSVG) || hasFormat(formats, FormatPDF) || hasFormat(formats, FormatPNG) {
		out = append(out, FormatSVG)
	}
	if hasFormat(formats, FormatJSON) {
		out = append(out, FormatJSON)
	}
	return out
}

// convertFormats returns the formats produced by the convert stage.
func convertFormats(formats []string) []string {
	var out []string
	if hasFormat(formats, FormatPDF) {
		out = append(out, FormatPDF)
	}
	if hasFormat(formats, FormatPNG) {
		out = append(out, FormatPNG)
	}
	return out
}
