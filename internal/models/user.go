package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RoleAdmin = "admin"

// User is keyed by email. Role is either RoleAdmin or empty.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email string             `bson:"email" json:"email"`
	Name  string             `bson:"name,omitempty" json:"name,omitempty"`
	Role  string             `bson:"role,omitempty" json:"role,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Claims is the decoded payload of a verified access token.
type Claims struct {
	Email string `json:"email"`
}
