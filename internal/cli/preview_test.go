package cli

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	"github.com/matzehuels/barcodewheel/pkg/typeset"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

// previewTestHandler wires the routes around an in-memory catalog,
// skipping when the host has no usable fonts.
func previewTestHandler(t *testing.T) http.Handler {
	t.Helper()

	shaper, err := typeset.NewShaper(typeset.Options{CacheDir: t.TempDir()})
	if err != nil {
		t.Skipf("no usable system fonts: %v", err)
	}
	if _, err := shaper.Face("sans-serif"); err != nil {
		t.Skipf("no sans-serif font available: %v", err)
	}

	c := New(io.Discard, LogInfo)
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	t.Cleanup(func() { runner.Close() })

	opts := pipeline.Options{
		Products: []catalog.Product{
			{UPC: upc.MustParse("3600029145"), Name: "Cheerios"},
			{UPC: upc.MustParse("123"), Name: "Widget"},
		},
		Backend: "module",
		Shaper:  shaper,
		Logger:  c.Logger,
	}

	return c.previewHandler(runner, opts)
}

func TestPreviewStaticRoutes(t *testing.T) {
	c := New(io.Discard, LogInfo)
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	h := c.previewHandler(runner, pipeline.Options{})

	t.Run("index", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("GET / = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q, want text/html", ct)
		}
		if !strings.Contains(rec.Body.String(), "/wheel.svg") {
			t.Error("index page should embed the wheel")
		}
	})

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("GET /healthz = %d, want 200", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
			t.Errorf("healthz body = %q, want ok", got)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("GET /nope = %d, want 404", rec.Code)
		}
	})
}

func TestPreviewWheelSVG(t *testing.T) {
	h := previewTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wheel.svg", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /wheel.svg = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if !strings.Contains(rec.Body.String(), "<svg ") {
		t.Error("response should be the wheel SVG")
	}
}

func TestPreviewRerendersEachRequest(t *testing.T) {
	h := previewTestHandler(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wheel.svg", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestPreviewRenderErrorSurfaces(t *testing.T) {
	c := New(io.Discard, LogInfo)
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	// No catalog source configured, so every render fails.
	h := c.previewHandler(runner, pipeline.Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wheel.svg", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("GET /wheel.svg with no source = %d, want 500", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("error response should carry a message")
	}
}
