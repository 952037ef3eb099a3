package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process DocumentStore used by tests and the
// CLI's dry-run mode. Listing returns documents in insertion order;
// SortBy and Fields are accepted but not applied.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]bson.M),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, document interface{}) (string, error) {
	raw, err := bson.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to unmarshal document: %w", err)
	}

	id, _ := doc["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		doc["_id"] = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], doc)
	return id, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string, filter Filter, results interface{}) error {
	s.mu.RLock()
	matched := s.matchLocked(collection, filter)
	s.mu.RUnlock()

	if filter.Offset > 0 {
		if filter.Offset >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && int64(len(matched)) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return decodeInto(matched, results)
}

func (s *MemoryStore) Update(ctx context.Context, collection string, id string, partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if docID, _ := doc["_id"].(string); docID == id {
			for field, value := range partial {
				doc[field] = value
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchLocked(collection, filter))), nil
}

func (s *MemoryStore) matchLocked(collection string, filter Filter) []bson.M {
	var matched []bson.M
	for _, doc := range s.collections[collection] {
		if matchesEquals(doc, filter.Equals) {
			matched = append(matched, doc)
		}
	}
	return matched
}

func matchesEquals(doc bson.M, equals map[string]interface{}) bool {
	for field, want := range equals {
		got, ok := doc[field]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// decodeInto round-trips each matched document through bson into the
// results slice, mirroring how the driver's cursor decodes.
func decodeInto(docs []bson.M, results interface{}) error {
	ptr := reflect.ValueOf(results)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("results must be a pointer to a slice, got %T", results)
	}

	sliceVal := ptr.Elem()
	elemType := sliceVal.Type().Elem()

	out := reflect.MakeSlice(sliceVal.Type(), 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}

		target := elemType
		if target.Kind() == reflect.Ptr {
			target = target.Elem()
		}
		elem := reflect.New(target)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}

		if elemType.Kind() == reflect.Ptr {
			out = reflect.Append(out, elem)
		} else {
			out = reflect.Append(out, elem.Elem())
		}
	}
	sliceVal.Set(out)
	return nil
}
