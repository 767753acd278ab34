package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID           bson.ObjectID `json:"_id"    bson:"_id,omitempty"`
	Name         string        `json:"name"   bson:"name"`
	Email        string        `json:"email"  bson:"email"`
	PasswordHash string        `json:"-"      bson:"password"`
	Avatar       string        `json:"avatar" bson:"avatar"`
	Date         time.Time     `json:"date"   bson:"date"`
}

// Profile is only read to check that a user has completed their profile.
type Profile struct {
	ID     bson.ObjectID `json:"_id"    bson:"_id,omitempty"`
	UserID bson.ObjectID `json:"user"   bson:"user"`
	Handle string        `json:"handle" bson:"handle"`
}
