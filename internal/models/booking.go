package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Booking is unique per (TreatmentName, Date, Patient). Slot is not part
// of the key.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	TreatmentName string             `bson:"treatmentName" json:"treatmentName"`
	Date          string             `bson:"date" json:"date"`
	Slot          string             `bson:"slot" json:"slot"`
	Patient       string             `bson:"patient" json:"patient"`
	PatientName   string             `bson:"patientName" json:"patientName"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Price         float64            `bson:"price,omitempty" json:"price,omitempty"`
	Paid          bool               `bson:"paid,omitempty" json:"paid,omitempty"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
}
