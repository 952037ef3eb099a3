package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Update when no document has the given id.
var ErrNotFound = errors.New("document not found")

// Filter narrows List and Count calls. The zero value matches every
// document in the collection.
type Filter struct {
	Equals   map[string]interface{} // exact-match field values
	Fields   []string               // projection; empty returns all fields
	Limit    int64
	Offset   int64
	SortBy   string
	SortDesc bool
}

// DocumentStore is the persistence contract the importer consumes:
// schemaless documents in named collections. Every call is atomic on
// its own; there is no multi-document transaction surface, so callers
// must treat each write as independently able to fail.
type DocumentStore interface {
	// Create inserts one document and returns its id.
	Create(ctx context.Context, collection string, document interface{}) (string, error)

	// List decodes matching documents into results, which must be a
	// pointer to a slice.
	List(ctx context.Context, collection string, filter Filter, results interface{}) error

	// Update applies a partial document to the document with the given
	// id. ErrNotFound when the id matches nothing.
	Update(ctx context.Context, collection string, id string, partial map[string]interface{}) error

	// Count returns the number of matching documents.
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
