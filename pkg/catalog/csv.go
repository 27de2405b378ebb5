package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

// LoadCSV reads a catalog from a CSV file. Relative picture paths in
// the rows resolve against the file's directory.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "catalog file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog %s", path)
	}
	defer f.Close()

	c, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read catalog %s", path)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// ReadCSV parses catalog rows from r.
//
// Rows are `upc,name[,picture]` without a header; a leading header row
// spelled exactly "upc,..." is tolerated and skipped. Blank lines are
// ignored. Row numbers in errors are 1-based.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var products []Product
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "row %d", row)
		}

		if isBlank(record) {
			continue
		}
		if row == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "upc") {
			continue
		}
		if len(record) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidCatalog,
				"row %d: expected upc,name[,picture], got %d fields", row, len(record))
		}

		value, err := upc.Parse(record[0])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "row %d", row)
		}

		p := Product{
			UPC:  value,
			Name: strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			p.Picture = strings.TrimSpace(record[2])
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog contains no products")
	}

	return New(products)
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
