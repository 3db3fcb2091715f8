package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []models.Booking
	paid      []models.Booking
}

func (f *fakeNotifier) BookingConfirmed(_ context.Context, b models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, b)
}

func (f *fakeNotifier) PaymentReceived(_ context.Context, b models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, b)
}

// failingStore fails every read and write with err.
type failingStore struct {
	db.Store
	err error
}

func (f failingStore) Find(context.Context, string, bson.M, bson.M, any) error { return f.err }
func (f failingStore) FindOne(context.Context, string, bson.M, any) error      { return f.err }
func (f failingStore) InsertOne(context.Context, string, any) (string, error) {
	return "", f.err
}
func (f failingStore) UpdateOne(context.Context, string, bson.M, bson.M, bool) (*models.UpdateResult, error) {
	return nil, f.err
}
func (f failingStore) DeleteOne(context.Context, string, bson.M) (int64, error) { return 0, f.err }

// failingUpdateStore behaves like the memory store except that every update
// fails.
type failingUpdateStore struct {
	*db.MemoryStore
	err error
}

func (f failingUpdateStore) UpdateOne(context.Context, string, bson.M, bson.M, bool) (*models.UpdateResult, error) {
	return nil, f.err
}

func seedServices(store db.Store, services ...models.Service) {
	for _, s := range services {
		if _, err := store.InsertOne(context.Background(), db.CollServices, s); err != nil {
			panic(err)
		}
	}
}
