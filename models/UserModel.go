package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type User struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id"`
	Name      string               `json:"name" bson:"name" validate:"required"`
	Email     string               `json:"email" bson:"email" validate:"required,email"`
	Password  string               `json:"-" bson:"password" validate:"required,min=6"`
	Image     string               `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	Friends   []primitive.ObjectID `json:"friends" bson:"friends"`
}

// Profile is the public projection of a user, safe to return to any
// authenticated caller. It never carries the credential hash.
type Profile struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
	Image string             `json:"image,omitempty" bson:"image,omitempty"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
}
