// Package picture loads product pictures from catalog references,
// local paths or http(s) URLs, normalizes them to an embeddable form,
// and bounds their pixel size so a wheel full of photos stays small.
package picture

import (
	"bytes"
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/observability"
)

const (
	// DefaultMaxEdge bounds the longer edge of embedded rasters.
	DefaultMaxEdge = 1024

	// maxFetchBytes caps remote downloads.
	maxFetchBytes = 20 << 20

	httpTimeout = 30 * time.Second
)

// Picture is a loaded, normalized product image ready to embed.
type Picture struct {
	Ref    string
	MIME   string
	Data   []byte
	Width  int
	Height int
}

// IsVector reports whether the picture is an SVG, which is embedded
// as-is instead of being decoded and resized.
func (p *Picture) IsVector() bool {
	return strings.HasPrefix(p.MIME, "image/svg")
}

// DataURI returns the picture as a base64 data URI usable in an SVG
// image href.
func (p *Picture) DataURI() string {
	return "data:" + p.MIME + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Loader fetches and prepares pictures. The zero value loads local
// files relative to the working directory with default limits.
type Loader struct {
	// BaseDir anchors relative references, usually the catalog's
	// directory.
	BaseDir string

	// Client performs remote fetches. Nil gets a client with a
	// request timeout.
	Client *http.Client

	// Cache, when set, stores fetched URL bytes under Keyer's HTTP
	// namespace so repeated renders skip the network.
	Cache cache.Cache
	Keyer cache.Keyer

	// MaxEdge overrides DefaultMaxEdge when positive.
	MaxEdge int
}

// Load resolves a catalog picture reference.
func (l *Loader) Load(ctx context.Context, ref string) (*Picture, error) {
	if err := errors.ValidatePictureRef(ref); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		data, err = l.fetch(ctx, ref)
	} else {
		data, err = l.readLocal(ref)
	}
	if err != nil {
		return nil, err
	}

	p := &Picture{Ref: ref, Data: data, MIME: sniffMIME(data)}
	if p.MIME == "" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unrecognized picture format: %s", ref)
	}
	if err := l.prepare(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Loader) readLocal(ref string) ([]byte, error) {
	path := ref
	if l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, ref)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "picture not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "reading picture %s", path)
	}
	return data, nil
}

// fetch downloads a picture URL, retrying transient failures and
// caching the raw bytes when a cache is wired in.
func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	var key string
	if l.Cache != nil && l.Keyer != nil {
		key = l.Keyer.HTTPKey("picture", url)
		if data, ok, err := l.Cache.Get(ctx, key); err == nil && ok {
			return data, nil
		}
	}

	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

		if err := checkStatus(resp.StatusCode); err != nil {
			return err
		}

		data, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
		if err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		if len(data) > maxFetchBytes {
			return fmt.Errorf("picture exceeds %d bytes", maxFetchBytes)
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, cache.ErrNotFound) {
			return nil, errors.New(errors.ErrCodeNotFound, "picture not found: %s", url)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetching picture %s", url)
	}

	if key != "" {
		_ = l.Cache.Set(ctx, key, data, cache.DefaultHTTPTTL)
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

// prepare fills dimensions and downscales oversized rasters. Vector
// pictures pass through untouched.
func (l *Loader) prepare(p *Picture) error {
	if p.IsVector() {
		return nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding picture %s", p.Ref)
	}
	p.Width, p.Height = cfg.Width, cfg.Height
	if mime := mimeForFormat(format); mime != "" {
		p.MIME = mime
	}

	maxEdge := l.MaxEdge
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if p.Width <= maxEdge && p.Height <= maxEdge {
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding picture %s", p.Ref)
	}

	var resized image.Image
	if p.Width >= p.Height {
		resized = imaging.Resize(img, maxEdge, 0, imaging.Lanczos)
	} else {
		resized = imaging.Resize(img, 0, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding resized picture")
	}

	p.Data = buf.Bytes()
	p.MIME = "image/png"
	p.Width = resized.Bounds().Dx()
	p.Height = resized.Bounds().Dy()
	return nil
}
