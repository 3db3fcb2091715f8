package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

// Collection names. These match the existing doctorsService database.
const (
	CollServices = "service"
	CollBookings = "booking"
	CollUsers    = "users"
	CollDoctors  = "doctors"
	CollPayments = "payments"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store is a document store over named collections. Every call is atomic
// for a single document only.
type Store interface {
	// Find decodes all matches into out, which must be a pointer to a slice.
	// A nil projection returns whole documents.
	Find(ctx context.Context, collection string, filter, projection bson.M, out any) error
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, collection string, filter bson.M, out any) error
	// InsertOne returns the hex id of the new document, or ErrDuplicateKey
	// when a unique index rejects it.
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
	// UpdateOne applies set as a $set patch to the first match.
	UpdateOne(ctx context.Context, collection string, filter, set bson.M, upsert bool) (*models.UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

// IndexSpec describes an ascending compound index.
type IndexSpec struct {
	Collection string
	Keys       []string
	Unique     bool
}

// Indexes backs the uniqueness rules of the data model. The booking key
// deliberately leaves out the slot.
var Indexes = []IndexSpec{
	{Collection: CollBookings, Keys: []string{"treatmentName", "date", "patient"}, Unique: true},
	{Collection: CollBookings, Keys: []string{"date"}},
	{Collection: CollUsers, Keys: []string{"email"}, Unique: true},
	{Collection: CollDoctors, Keys: []string{"email"}, Unique: true},
	{Collection: CollPayments, Keys: []string{"booking"}},
}
