package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoOpTimeout = 5 * time.Second

// mongoStore implements DocumentStore on a MongoDB database.
type mongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps an already-connected database handle.
func NewMongoStore(db *mongo.Database) DocumentStore {
	return &mongoStore{db: db}
}

func (s *mongoStore) Create(ctx context.Context, collection string, document interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).InsertOne(ctx, document)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return insertedID(res.InsertedID), nil
}

func (s *mongoStore) List(ctx context.Context, collection string, filter Filter, results interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	opts := options.Find()
	if len(filter.Fields) > 0 {
		projection := bson.M{}
		for _, field := range filter.Fields {
			projection[field] = 1
		}
		opts.SetProjection(projection)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Offset > 0 {
		opts.SetSkip(filter.Offset)
	}
	if filter.SortBy != "" {
		order := 1
		if filter.SortDesc {
			order = -1
		}
		opts.SetSort(bson.D{{Key: filter.SortBy, Value: order}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, equalsFilter(filter), opts)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("failed to decode documents: %w", err)
	}
	return nil
}

func (s *mongoStore) Update(ctx context.Context, collection string, id string, partial map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": partial})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	count, err := s.db.Collection(collection).CountDocuments(ctx, equalsFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func equalsFilter(filter Filter) bson.M {
	query := bson.M{}
	for field, value := range filter.Equals {
		query[field] = value
	}
	return query
}

// idFilter matches documents whose _id is either a driver-generated
// ObjectID or an application-assigned string.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func insertedID(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
