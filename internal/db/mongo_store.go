package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

// MongoStore implements Store on a single MongoDB database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{db: database}
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter, projection bson.M, out any) error {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("find one %s: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	result, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("insert %s: %w", collection, ErrDuplicateKey)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return idString(result.InsertedID), nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter, set bson.M, upsert bool) (*models.UpdateResult, error) {
	opts := options.Update().SetUpsert(upsert)
	result, err := s.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": set}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("update %s: %w", collection, ErrDuplicateKey)
		}
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}

	out := &models.UpdateResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
	}
	if result.UpsertedID != nil {
		out.UpsertedID = idString(result.UpsertedID)
	}
	return out, nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	result, err := s.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates every index in Indexes. Creating an existing index
// is a no-op on the server.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	byCollection := map[string][]mongo.IndexModel{}
	var order []string
	for _, spec := range Indexes {
		keys := bson.D{}
		for _, k := range spec.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		model := mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(indexName(spec)),
		}
		if spec.Unique {
			model.Options.SetUnique(true)
		}
		if _, ok := byCollection[spec.Collection]; !ok {
			order = append(order, spec.Collection)
		}
		byCollection[spec.Collection] = append(byCollection[spec.Collection], model)
	}

	for _, name := range order {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, byCollection[name]); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("create indexes on %s: existing documents repeat a unique key (%v): %w", name, err, ErrDuplicateKey)
			}
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func indexName(spec IndexSpec) string {
	name := strings.Join(spec.Keys, "_1_") + "_1"
	if spec.Unique {
		name += "_unique"
	}
	return name
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
