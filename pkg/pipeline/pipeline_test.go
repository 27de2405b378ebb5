package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	renderwheel "github.com/matzehuels/barcodewheel/pkg/render/wheel"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func inlineProducts() []catalog.Product {
	return []catalog.Product{
		{UPC: upc.MustParse("3600029145"), Name: "Cheerios"},
		{UPC: upc.MustParse("123"), Name: "Widget"},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"pdf", false},
		{"png", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsSourceRequired(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("no source should fail with INVALID_CONFIG, got %v", err)
	}

	opts = Options{CSV: "products.csv", Products: inlineProducts()}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("two sources should fail with INVALID_CONFIG, got %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Products: inlineProducts()}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Size != DefaultSize {
		t.Errorf("Size should be %g, got %g", DefaultSize, opts.Size)
	}
	if opts.Margin != DefaultMargin {
		t.Errorf("Margin should be %g, got %g", DefaultMargin, opts.Margin)
	}
	if opts.Symbology != DefaultSymbology {
		t.Errorf("Symbology should be %s, got %s", DefaultSymbology, opts.Symbology)
	}
	if opts.Backend != DefaultBackend {
		t.Errorf("Backend should be %s, got %s", DefaultBackend, opts.Backend)
	}
	if opts.Font != DefaultFont {
		t.Errorf("Font should be %s, got %s", DefaultFont, opts.Font)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %g, got %g", DefaultScale, opts.Scale)
	}
	if opts.Engine != DefaultEngine {
		t.Errorf("Engine should be %s, got %s", DefaultEngine, opts.Engine)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Products: inlineProducts()}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalSize := opts.Size
	originalFormats := len(opts.Formats)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Size != originalSize {
		t.Error("Size changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestOptionsNormalizesSymbology(t *testing.T) {
	opts := Options{Products: inlineProducts(), Symbology: "UPC-A"}
	if err := opts.ValidateForEncode(); err != nil {
		t.Fatalf("ValidateForEncode() error: %v", err)
	}
	if opts.Symbology != "upca" {
		t.Errorf("Symbology = %q, want %q", opts.Symbology, "upca")
	}

	opts = Options{Products: inlineProducts(), Symbology: "pdf417"}
	if err := opts.ValidateForEncode(); !errors.Is(err, errors.ErrCodeInvalidSymbology) {
		t.Errorf("unknown symbology should fail with INVALID_SYMBOLOGY, got %v", err)
	}
}

func TestOptionsValidateForLayout(t *testing.T) {
	opts := Options{Slices: 1}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("1 slice should fail, got %v", err)
	}

	opts = Options{Size: 100, Margin: 50}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("margin consuming the radius should fail, got %v", err)
	}

	opts = Options{Margin: -1}
	if err := opts.ValidateForLayout(); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("negative margin should fail, got %v", err)
	}
}

func TestResolveSlices(t *testing.T) {
	tests := []struct {
		slices   int
		products int
		want     int
	}{
		{0, 5, 5},
		{0, 1, 2}, // a wheel needs at least two slices
		{0, 0, 2},
		{8, 3, 8},
	}

	for _, tt := range tests {
		opts := Options{Slices: tt.slices}
		if got := opts.resolveSlices(tt.products); got != tt.want {
			t.Errorf("resolveSlices(%d) with Slices=%d = %d, want %d",
				tt.products, tt.slices, got, tt.want)
		}
	}
}

func TestOptionsSource(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{CSV: "products.csv"}, SourceCSV},
		{Options{MongoURI: "mongodb://localhost"}, SourceMongo},
		{Options{Products: inlineProducts()}, SourceInline},
	}

	for _, tt := range tests {
		if got := tt.opts.Source(); got != tt.want {
			t.Errorf("Source() = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderFormatsSplit(t *testing.T) {
	tests := []struct {
		formats     []string
		wantRender  []string
		wantConvert []string
	}{
		{[]string{"svg"}, []string{"svg"}, nil},
		{[]string{"json"}, []string{"json"}, nil},
		{[]string{"pdf"}, []string{"svg"}, []string{"pdf"}},
		{[]string{"png", "json"}, []string{"svg", "json"}, []string{"png"}},
		{[]string{"svg", "pdf", "png"}, []string{"svg"}, []string{"pdf", "png"}},
	}

	for _, tt := range tests {
		if got := renderFormats(tt.formats); !equalStrings(got, tt.wantRender) {
			t.Errorf("renderFormats(%v) = %v, want %v", tt.formats, got, tt.wantRender)
		}
		if got := convertFormats(tt.formats); !equalStrings(got, tt.wantConvert) {
			t.Errorf("convertFormats(%v) = %v, want %v", tt.formats, got, tt.wantConvert)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildLayoutDefaults(t *testing.T) {
	cat, err := catalog.New(inlineProducts())
	if err != nil {
		t.Fatal(err)
	}

	l, err := BuildLayout(cat, Options{})
	if err != nil {
		t.Fatalf("BuildLayout() error: %v", err)
	}

	if l.Slices != 2 {
		t.Errorf("Slices = %d, want 2", l.Slices)
	}
	if l.Center.X != DefaultSize/2 || l.Center.Y != DefaultSize/2 {
		t.Errorf("Center = %v, want (%g, %g)", l.Center, DefaultSize/2, DefaultSize/2)
	}
	if want := DefaultSize/2 - DefaultMargin; l.Radius != want {
		t.Errorf("Radius = %g, want %g", l.Radius, want)
	}
}

func TestExecuteJSON(t *testing.T) {
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fileCache, nil, quietLogger())
	defer runner.Close()

	opts := Options{
		Products: inlineProducts(),
		Backend:  "module",
		Formats:  []string{FormatJSON},
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Stats.ProductCount != 2 {
		t.Errorf("ProductCount = %d, want 2", result.Stats.ProductCount)
	}
	if result.Stats.SliceCount != 2 {
		t.Errorf("SliceCount = %d, want 2", result.Stats.SliceCount)
	}
	if result.CacheInfo.SymbolMisses != 2 {
		t.Errorf("SymbolMisses = %d, want 2", result.CacheInfo.SymbolMisses)
	}
	if len(result.Symbols) != 2 {
		t.Errorf("Symbols = %d, want 2", len(result.Symbols))
	}

	doc, err := renderwheel.ParseJSON(result.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("artifact does not parse: %v", err)
	}
	if doc.Layout.Slices != 2 || len(doc.Products) != 2 {
		t.Errorf("document = %d slices %d products", doc.Layout.Slices, len(doc.Products))
	}

	// A second run is served from the cache.
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if second.CacheInfo.SymbolHits != 2 {
		t.Errorf("second run SymbolHits = %d, want 2", second.CacheInfo.SymbolHits)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the layout cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
}

// testShaper skips when the host has no resolvable fonts.
func testShaper(t *testing.T) *typeset.Shaper {
	t.Helper()
	s, err := typeset.NewShaper(typeset.Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Skipf("no usable system fonts: %v", err)
	}
	if _, err := s.Face("sans-serif"); err != nil {
		t.Skipf("no sans-serif font available: %v", err)
	}
	return s
}

func TestExecuteSVG(t *testing.T) {
	shaper := testShaper(t)

	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	opts := Options{
		Products: inlineProducts(),
		Backend:  "module",
		Formats:  []string{FormatSVG},
		Shaper:   shaper,
	}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, "<svg ") {
		t.Error("svg artifact missing root element")
	}
	if !strings.Contains(svg, `href="#barcode-03600029145"`) {
		t.Error("svg artifact missing barcode use")
	}
}

func TestExecuteInvalidFormat(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	defer runner.Close()

	opts := Options{
		Products: inlineProducts(),
		Formats:  []string{"bmp"},
	}
	if _, err := runner.Execute(context.Background(), opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestLoadPicturesSkipsMissing(t *testing.T) {
	cat, err := catalog.New([]catalog.Product{
		{UPC: upc.MustParse("123"), Name: "Widget", Picture: "missing.png"},
	})
	if err != nil {
		t.Fatal(err)
	}

	pics, err := LoadPictures(context.Background(), cache.NewNullCache(), cache.NewDefaultKeyer(), cat, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("missing picture should not fail the run: %v", err)
	}
	if len(pics) != 0 {
		t.Errorf("pics = %d, want 0", len(pics))
	}
}

func TestTraversalRefRejectedAtLoad(t *testing.T) {
	_, err := catalog.New([]catalog.Product{
		{UPC: upc.MustParse("123"), Name: "Widget", Picture: "../secret.png"},
	})
	if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
		t.Fatalf("expected INVALID_CATALOG, got %v", err)
	}
	if !strings.Contains(err.Error(), "INVALID_PATH") {
		t.Errorf("cause should carry INVALID_PATH: %v", err)
	}
}

// A picture ref that survives catalog validation but still trips a path
// error at read time must fail the run instead of degrading to a
// warning. A ref naming a directory triggers that branch.
func TestLoadPicturesFailsOnPathError(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "pics"), 0755); err != nil {
		t.Fatal(err)
	}
	csvPath := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(csvPath, []byte("123,Widget,pics\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.LoadCSV(csvPath)
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}

	_, err = LoadPictures(context.Background(), cache.NewNullCache(), cache.NewDefaultKeyer(), cat, Options{Logger: quietLogger()})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

func TestConvertWithoutTargets(t *testing.T) {
	artifacts, err := Convert(context.Background(), nil, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if len(artifacts) != 0 {
		t.Errorf("artifacts = %d, want 0", len(artifacts))
	}
}
