package picture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// makePNG encodes a w x h test image.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestSniffMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\nrest"), "image/png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0rest"), "image/jpeg"},
		{"gif", []byte("GIF89arest"), "image/gif"},
		{"bmp", []byte("BMrest"), "image/bmp"},
		{"tiff little endian", []byte("II*\x00rest"), "image/tiff"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"svg plain", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), "image/svg+xml"},
		{"svg with declaration", []byte("<?xml version=\"1.0\"?>\n<!-- logo -->\n<svg/>"), "image/svg+xml"},
		{"unknown", []byte("hello world"), ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffMIME(tt.data); got != tt.want {
				t.Errorf("sniffMIME() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataURI(t *testing.T) {
	p := &Picture{MIME: "image/svg+xml", Data: []byte("<svg/>")}
	want := "data:image/svg+xml;base64,PHN2Zy8+"
	if got := p.DataURI(); got != want {
		t.Errorf("DataURI() = %q, want %q", got, want)
	}
}

func TestLoadLocalPNG(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "icon.png"), makePNG(t, 8, 6), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{BaseDir: dir}
	p, err := loader.Load(context.Background(), "icon.png")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", p.MIME)
	}
	if p.Width != 8 || p.Height != 6 {
		t.Errorf("dimensions = %dx%d, want 8x6", p.Width, p.Height)
	}
	if p.IsVector() {
		t.Error("IsVector() = true for a PNG")
	}
}

func TestLoadLocalSVG(t *testing.T) {
	dir := t.TempDir()
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	if err := os.WriteFile(filepath.Join(dir, "logo.svg"), svg, 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{BaseDir: dir}
	p, err := loader.Load(context.Background(), "logo.svg")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !p.IsVector() {
		t.Error("IsVector() = false for an SVG")
	}
	if !bytes.Equal(p.Data, svg) {
		t.Error("SVG bytes should pass through unmodified")
	}
	if p.Width != 0 || p.Height != 0 {
		t.Errorf("vector dimensions = %dx%d, want 0x0", p.Width, p.Height)
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader := &Loader{BaseDir: t.TempDir()}
	_, err := loader.Load(context.Background(), "nope.png")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadRejectsTraversal(t *testing.T) {
	loader := &Loader{BaseDir: t.TempDir()}
	_, err := loader.Load(context.Background(), "../secret.png")
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{BaseDir: dir}
	_, err := loader.Load(context.Background(), "notes.txt")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestLoadDownscales(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "wide.png"), makePNG(t, 300, 10), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{BaseDir: dir, MaxEdge: 64}
	p, err := loader.Load(context.Background(), "wide.png")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Width != 64 {
		t.Errorf("Width = %d, want 64", p.Width)
	}
	if p.Height < 1 || p.Height >= 10 {
		t.Errorf("Height = %d, want scaled below 10", p.Height)
	}
	if p.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", p.MIME)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("decoding resized image: %v", err)
	}
	if cfg.Width != p.Width || cfg.Height != p.Height {
		t.Errorf("encoded dimensions = %dx%d, struct says %dx%d", cfg.Width, cfg.Height, p.Width, p.Height)
	}
}

func TestLoadSmallStaysUntouched(t *testing.T) {
	dir := t.TempDir()
	data := makePNG(t, 8, 8)
	if err := os.WriteFile(filepath.Join(dir, "icon.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &Loader{BaseDir: dir, MaxEdge: 64}
	p, err := loader.Load(context.Background(), "icon.png")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(p.Data, data) {
		t.Error("small raster should not be re-encoded")
	}
}

func TestLoadURL(t *testing.T) {
	data := makePNG(t, 4, 4)
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(data)
	}))
	defer server.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	loader := &Loader{Client: server.Client(), Cache: c, Keyer: cache.NewDefaultKeyer()}

	p, err := loader.Load(context.Background(), server.URL+"/product.png")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.MIME != "image/png" || p.Width != 4 {
		t.Errorf("got %q %dx%d, want image/png 4x4", p.MIME, p.Width, p.Height)
	}
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}

	if _, err := loader.Load(context.Background(), server.URL+"/product.png"); err != nil {
		t.Fatalf("cached Load() error: %v", err)
	}
	if hits != 1 {
		t.Errorf("hits after cached load = %d, want 1", hits)
	}
}

func TestLoadURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	loader := &Loader{Client: server.Client()}
	_, err := loader.Load(context.Background(), server.URL+"/missing.png")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
