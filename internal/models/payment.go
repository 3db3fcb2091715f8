package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a transaction reported by the client for a booking.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Booking       string             `bson:"booking" json:"booking"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Patient       string             `bson:"patient,omitempty" json:"patient,omitempty"`
	Price         float64            `bson:"price,omitempty" json:"price,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
