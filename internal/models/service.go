package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Service is a treatment offered by the clinic with its daily slot labels.
type Service struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Price float64            `bson:"price,omitempty" json:"price,omitempty"`
	Slots []string           `bson:"slots,omitempty" json:"slots"`
}

// ServiceName is the name-only projection of a Service.
type ServiceName struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}
