package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/barcodewheel/pkg/errors"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

// MongoOptions locates a product collection.
type MongoOptions struct {
	URI        string // mongodb:// connection string
	Database   string
	Collection string
}

// mongoProduct mirrors a catalog document. UPC is decoded loosely since
// collections store it either as a string or as a number.
type mongoProduct struct {
	UPC     any    `bson:"upc"`
	Name    string `bson:"name"`
	Picture string `bson:"picture,omitempty"`
}

// LoadMongo reads a catalog from a MongoDB collection. Documents are
// sorted by UPC so repeated loads hash identically.
func LoadMongo(ctx context.Context, opts MongoOptions) (*Catalog, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongodb URI cannot be empty")
	}
	if opts.Database == "" || opts.Collection == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongodb database and collection must be set")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to %s", opts.URI)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping %s", opts.URI)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "upc", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s.%s", opts.Database, opts.Collection)
	}
	defer cursor.Close(ctx)

	var products []Product
	for cursor.Next(ctx) {
		var doc mongoProduct
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode document %d", len(products)+1)
		}

		value, err := decodeUPC(doc.UPC)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "document %d", len(products)+1)
		}

		products = append(products, Product{
			UPC:     value,
			Name:    doc.Name,
			Picture: doc.Picture,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterate %s.%s", opts.Database, opts.Collection)
	}

	if len(products) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog,
			"collection %s.%s contains no products", opts.Database, opts.Collection)
	}

	return New(products)
}

// decodeUPC normalizes the loosely typed upc field.
func decodeUPC(v any) (upc.UPC, error) {
	switch value := v.(type) {
	case string:
		return upc.Parse(value)
	case int32:
		return upc.FromInt(int64(value))
	case int64:
		return upc.FromInt(value)
	case float64:
		return upc.FromInt(int64(value))
	case nil:
		return "", errors.New(errors.ErrCodeInvalidCatalog, "document has no upc field")
	default:
		return "", errors.New(errors.ErrCodeInvalidCatalog, "unsupported upc type %T", v)
	}
}
