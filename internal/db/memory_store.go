package db

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

// MemoryStore is an in-process Store for local runs and tests. Documents go
// through a BSON round trip so they decode exactly as they would from
// MongoDB. Filters support top-level equality only and unique indexes from
// Indexes are enforced.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	unique      map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		collections: map[string][]bson.M{},
		unique:      map[string][][]string{},
	}
	for _, spec := range Indexes {
		if spec.Unique {
			s.unique[spec.Collection] = append(s.unique[spec.Collection], spec.Keys)
		}
	}
	return s
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter, projection bson.M, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := normalize(filter)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}

	s.mu.RLock()
	var matched []bson.M
	for _, doc := range s.collections[collection] {
		if matches(doc, f) {
			matched = append(matched, project(doc, projection))
		}
	}
	s.mu.RUnlock()

	return decodeAll(matched, out)
}

func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter bson.M, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := normalize(filter)
	if err != nil {
		return fmt.Errorf("find one %s: %w", collection, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.collections[collection] {
		if matches(doc, f) {
			return decode(doc, out)
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d, err := normalize(doc)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	id := ensureID(d)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.violatesUnique(collection, d, -1) {
		return "", fmt.Errorf("insert %s: %w", collection, ErrDuplicateKey)
	}
	s.collections[collection] = append(s.collections[collection], d)
	return idString(id), nil
}

func (s *MemoryStore) UpdateOne(ctx context.Context, collection string, filter, set bson.M, upsert bool) (*models.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := normalize(filter)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}
	patch, err := normalize(set)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, doc := range docs {
		if !matches(doc, f) {
			continue
		}
		updated := bson.M{}
		for k, v := range doc {
			updated[k] = v
		}
		modified := false
		for k, v := range patch {
			if k == "_id" {
				continue
			}
			if old, ok := updated[k]; !ok || !reflect.DeepEqual(old, v) {
				modified = true
			}
			updated[k] = v
		}
		if s.violatesUnique(collection, updated, i) {
			return nil, fmt.Errorf("update %s: %w", collection, ErrDuplicateKey)
		}
		docs[i] = updated
		result := &models.UpdateResult{MatchedCount: 1}
		if modified {
			result.ModifiedCount = 1
		}
		return result, nil
	}

	if !upsert {
		return &models.UpdateResult{}, nil
	}

	created := bson.M{}
	for k, v := range f {
		created[k] = v
	}
	for k, v := range patch {
		created[k] = v
	}
	id := ensureID(created)
	if s.violatesUnique(collection, created, -1) {
		return nil, fmt.Errorf("update %s: %w", collection, ErrDuplicateKey)
	}
	s.collections[collection] = append(docs, created)
	return &models.UpdateResult{UpsertedCount: 1, UpsertedID: idString(id)}, nil
}

func (s *MemoryStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := normalize(filter)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i, doc := range docs {
		if matches(doc, f) {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// EnsureIndexes is a no-op: unique keys are enforced from construction.
func (s *MemoryStore) EnsureIndexes(ctx context.Context) error {
	return ctx.Err()
}

// Count returns the number of documents in a collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// violatesUnique must be called with the write lock held. skip is the index
// of the document being replaced, or -1.
func (s *MemoryStore) violatesUnique(collection string, doc bson.M, skip int) bool {
	for _, keys := range s.unique[collection] {
		for i, other := range s.collections[collection] {
			if i == skip {
				continue
			}
			same := true
			for _, k := range keys {
				if !reflect.DeepEqual(doc[k], other[k]) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func normalize(v any) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map && rv.IsNil() {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := bson.M{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func ensureID(doc bson.M) any {
	if id, ok := doc["_id"]; ok {
		if oid, isOID := id.(primitive.ObjectID); !isOID || !oid.IsZero() {
			return id
		}
	}
	id := primitive.NewObjectID()
	doc["_id"] = id
	return id
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func project(doc, projection bson.M) bson.M {
	if len(projection) == 0 {
		return doc
	}
	out := bson.M{}
	if included(projection["_id"], true) {
		if id, ok := doc["_id"]; ok {
			out["_id"] = id
		}
	}
	for k, v := range projection {
		if k == "_id" || !included(v, false) {
			continue
		}
		if val, ok := doc[k]; ok {
			out[k] = val
		}
	}
	return out
}

func included(v any, missing bool) bool {
	switch n := v.(type) {
	case nil:
		return missing
	case bool:
		return n
	case int:
		return n != 0
	case int32:
		return n != 0
	case int64:
		return n != 0
	case float64:
		return n != 0
	default:
		return true
	}
}

func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeAll(docs []bson.M, out any) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a pointer to a slice, got %T", out)
	}
	slice := ptr.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decode(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}
