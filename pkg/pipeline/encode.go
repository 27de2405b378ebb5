package pipeline

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/catalog"
	"github.com/matzehuels/barcodewheel/pkg/observability"
)

// Encode generates one barcode symbol per distinct UPC value in the
// catalog. Cached symbols are reused; the rest are encoded with a
// bounded worker group and written back. The returned counts are cache
// hits and misses in that order.
func Encode(ctx context.Context, c cache.Cache, keyer cache.Keyer, cat *catalog.Catalog, opts Options) (map[string]*barcode.Symbol, int, int, error) {
	if err := opts.ValidateForEncode(); err != nil {
		return nil, 0, 0, err
	}

	enc := opts.Encoder
	if enc == nil {
		var err error
		enc, err = barcode.NewEncoder(opts.Backend)
		if err != nil {
			return nil, 0, 0, err
		}
	}
	symbology := barcode.Symbology(opts.Symbology)

	// Distinct UPC values in first-seen order.
	values := make([]string, 0, cat.Len())
	seen := make(map[string]struct{}, cat.Len())
	for _, p := range cat.Products() {
		v := p.UPC.String()
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	symbols := make(map[string]*barcode.Symbol, len(values))
	keyOpts := opts.SymbolKeyOpts()

	// Serve what the cache already holds.
	var misses []string
	hits := 0
	for _, v := range values {
		if opts.Refresh {
			misses = append(misses, v)
			continue
		}
		key := keyer.SymbolKey(string(symbology), v, keyOpts)
		if data, hit, err := c.Get(ctx, key); err == nil && hit {
			var sym barcode.Symbol
			if err := json.Unmarshal(data, &sym); err == nil {
				observability.Cache().OnCacheHit(ctx, "symbol")
				symbols[v] = &sym
				hits++
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, "symbol")
		misses = append(misses, v)
	}

	// Encode the rest. Indexed writes keep results deterministic
	// regardless of completion order.
	fresh := make([]*barcode.Symbol, len(misses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultEncodeWorkers)
	for i, v := range misses {
		g.Go(func() error {
			sym, err := enc.Encode(gctx, symbology, v)
			if err != nil {
				return err
			}
			fresh[i] = sym
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, hits, len(misses), err
	}

	for i, v := range misses {
		symbols[v] = fresh[i]
		key := keyer.SymbolKey(string(symbology), v, keyOpts)
		if data, err := json.Marshal(fresh[i]); err == nil {
			_ = c.Set(ctx, key, data, cache.DefaultSymbolTTL)
			observability.Cache().OnCacheSet(ctx, "symbol", len(data))
		}
	}

	return symbols, hits, len(misses), nil
}
