package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find decodes all documents", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		ns := mt.DB.Name() + "." + CollServices
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Cleaning"}, {Key: "slots", Value: bson.A{"10:00", "11:00"}}},
			bson.D{{Key: "name", Value: "Whitening"}, {Key: "slots", Value: bson.A{"09:00"}}},
		))

		var services []models.Service
		require.NoError(mt, store.Find(ctx, CollServices, nil, bson.M{"name": 1}, &services))
		require.Len(mt, services, 2)
		assert.Equal(mt, "Cleaning", services[0].Name)
		assert.Equal(mt, []string{"09:00"}, services[1].Slots)
	})

	mt.Run("find one maps no documents to ErrNotFound", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		ns := mt.DB.Name() + "." + CollUsers
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		var u models.User
		err := store.FindOne(ctx, CollUsers, bson.M{"email": "ghost@x.com"}, &u)
		assert.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("insert returns object id hex", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := store.InsertOne(ctx, CollDoctors, models.Doctor{Email: "doc@x.com", Name: "Dr. Who"})
		require.NoError(mt, err)
		_, err = primitive.ObjectIDFromHex(id)
		assert.NoError(mt, err)
	})

	mt.Run("insert maps duplicate key errors", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := store.InsertOne(ctx, CollBookings, models.Booking{TreatmentName: "Cleaning", Date: "2024-01-01", Patient: "a@x.com"})
		assert.True(mt, errors.Is(err, ErrDuplicateKey))
	})

	mt.Run("update reports counts and upserted id", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		upserted := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: upserted}}}},
		))

		res, err := store.UpdateOne(ctx, CollUsers, bson.M{"email": "a@x.com"}, bson.M{"name": "Alice"}, true)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.UpsertedCount)
		assert.Equal(mt, upserted.Hex(), res.UpsertedID)
	})

	mt.Run("delete reports deleted count", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		n, err := store.DeleteOne(ctx, CollDoctors, bson.M{"email": "doc@x.com"})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), n)
	})

	mt.Run("ensure indexes creates one batch per collection", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		for i := 0; i < 4; i++ {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}
		require.NoError(mt, store.EnsureIndexes(ctx))
	})

	mt.Run("ensure indexes surfaces server errors", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index options conflict",
		}))
		err := store.EnsureIndexes(ctx)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), CollBookings)
		assert.NotErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("ensure indexes reports duplicate legacy documents", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error collection: doctorsService.booking index: treatmentName_1_date_1_patient_1_unique",
		}))
		err := store.EnsureIndexes(ctx)
		require.Error(mt, err)
		assert.ErrorIs(mt, err, ErrDuplicateKey)
		assert.Contains(mt, err.Error(), CollBookings)
	})
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "treatmentName_1_date_1_patient_1_unique", indexName(Indexes[0]))
	assert.Equal(t, "date_1", indexName(Indexes[1]))
}
