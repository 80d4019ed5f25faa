// Package mongodb reads the books table from a MongoDB collection.
//
// Each document holds one book, keyed by the same field names as the CSV
// header ("Book", "Author(s)", "Genre", "First published",
// "Approximate sales in millions"). Values of any BSON scalar type are
// converted to the string form the CSV would carry, so cleaning behaves the
// same for both sources.
package mongodb

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/errors"
)

// Config configures a Source.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // connect timeout; defaults to 10s
}

// Source reads books from a collection. Documents are returned in _id order,
// which defines their row numbers.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
	name   string
}

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	name := fmt.Sprintf("mongodb:%s.%s", cfg.Database, cfg.Collection)
	if cfg.URI == "" || cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongodb source needs uri, database and collection")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.DataUnavailable(name, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.DataUnavailable(name, err)
	}

	return &Source{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		name:   name,
	}, nil
}

// Name returns "mongodb:<database>.<collection>".
func (s *Source) Name() string {
	return s.name
}

// Fingerprint combines the document count with the largest _id.
func (s *Source) Fingerprint(ctx context.Context) (string, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return "", errors.DataUnavailable(s.name, err)
	}

	var last bson.M
	err = s.coll.FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}}).SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Decode(&last)
	if err != nil && err != mongo.ErrNoDocuments {
		return "", errors.DataUnavailable(s.name, err)
	}
	return fmt.Sprintf("%d-%s", n, Cell(last["_id"])), nil
}

// Rows reads every document in _id order.
func (s *Source) Rows(ctx context.Context) ([]books.RawRow, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.DataUnavailable(s.name, err)
	}
	defer cur.Close(ctx)

	var rows []books.RawRow
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.DataUnavailable(s.name, err)
		}
		rows = append(rows, Row(len(rows)+1, doc))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.DataUnavailable(s.name, err)
	}
	return rows, nil
}

// Close disconnects the client.
func (s *Source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Row converts a document into a raw row numbered n.
func Row(n int, doc bson.M) books.RawRow {
	return books.RawRow{
		Row:            n,
		Book:           Cell(doc[books.ColBook]),
		Authors:        Cell(doc[books.ColAuthors]),
		Genre:          Cell(doc[books.ColGenre]),
		FirstPublished: year(doc[books.ColFirstPublished]),
		Sales:          Cell(doc[books.ColSales]),
	}
}

// Cell renders a BSON value as a CSV cell. Missing and null values become
// the empty string.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case primitive.Decimal128:
		return x.String()
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339)
	case primitive.Null, primitive.Undefined:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// year renders dates stored as BSON datetimes as their year.
func year(v any) string {
	if dt, ok := v.(primitive.DateTime); ok {
		return dt.Time().UTC().Format("2006")
	}
	return Cell(v)
}

var _ books.Source = (*Source)(nil)
