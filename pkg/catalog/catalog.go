// Package catalog loads the product list a wheel is built from.
//
// A catalog row carries a UPC, a display name, and an optional picture
// reference (a path relative to the catalog file, or an http(s) URL).
// Sources: headerless CSV files and MongoDB collections. Rows keep
// their source order; one wheel slice is generated per product.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/barcodewheel/pkg/cache"
	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

// Product is one catalog entry, one slice of the wheel.
type Product struct {
	UPC     upc.UPC `json:"upc"`
	Name    string  `json:"name"`
	Picture string  `json:"picture,omitempty"`
}

// Catalog is an ordered, duplicate-free product list.
type Catalog struct {
	products []Product
	dir      string // base directory for relative picture paths
}

// New builds a catalog from products, validating picture references and
// rejecting duplicate UPCs.
func New(products []Product) (*Catalog, error) {
	seen := make(map[upc.UPC]int, len(products))
	for i, p := range products {
		if prev, ok := seen[p.UPC]; ok {
			return nil, errors.New(errors.ErrCodeInvalidCatalog,
				"duplicate UPC %s (entries %d and %d)", p.UPC, prev+1, i+1)
		}
		seen[p.UPC] = i

		if p.Picture != "" {
			if err := errors.ValidatePictureRef(p.Picture); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "entry %d (%s)", i+1, p.UPC)
			}
		}
	}

	return &Catalog{products: products}, nil
}

// Products returns the catalog entries in source order.
// The returned slice is shared; callers must not modify it.
func (c *Catalog) Products() []Product { return c.products }

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Dir returns the base directory for relative picture paths. Empty for
// catalogs that did not come from a file.
func (c *Catalog) Dir() string { return c.dir }

// Hash returns a stable content hash of the catalog, used as the cache
// key component for derived layouts.
func (c *Catalog) Hash() string {
	data, _ := json.Marshal(c.products)
	return cache.Hash(data)
}

// Select returns a new catalog containing only the products at the
// given indices, in the given order. Used by the interactive picker.
func (c *Catalog) Select(indices []int) (*Catalog, error) {
	selected := make([]Product, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(c.products) {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "product index out of range: %d", i)
		}
		selected = append(selected, c.products[i])
	}
	out, err := New(selected)
	if err != nil {
		return nil, err
	}
	out.dir = c.dir
	return out, nil
}

// String implements fmt.Stringer for log output.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(%d products)", len(c.products))
}
