package pipeline

import (
	"context"

	"github.com/matzehuels/barcodewheel/pkg/catalog"
)

// Load reads the product catalog from the configured source and applies
// the Pick selection if one is set.
func Load(ctx context.Context, opts Options) (*catalog.Catalog, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	var cat *catalog.Catalog
	var err error

	switch {
	case opts.CSV != "":
		cat, err = catalog.LoadCSV(opts.CSV)
	case opts.MongoURI != "":
		cat, err = catalog.LoadMongo(ctx, catalog.MongoOptions{
			URI:        opts.MongoURI,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
	default:
		cat, err = catalog.New(opts.Products)
	}
	if err != nil {
		return nil, err
	}

	if len(opts.Pick) > 0 {
		cat, err = cat.Select(opts.Pick)
		if err != nil {
			return nil, err
		}
	}

	return cat, nil
}
