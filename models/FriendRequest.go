package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// FriendRequest lives in its own collection with foreign keys to both
// parties, so lookups by sender or recipient are indexed instead of
// scanning embedded arrays.
type FriendRequest struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	From      primitive.ObjectID `json:"from" bson:"from"`
	To        primitive.ObjectID `json:"to" bson:"to"`
	Message   string             `json:"message" bson:"message"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ReceivedRequest is a request entry resolved with the sender's profile,
// returned to the recipient.
type ReceivedRequest struct {
	ID      primitive.ObjectID `json:"_id"`
	From    Profile            `json:"from"`
	Message string             `json:"message"`
	Status  string             `json:"status"`
}

// SentRequest pairs a request with the profile of the user it was sent to.
type SentRequest struct {
	User    Profile       `json:"user"`
	Request FriendRequest `json:"request"`
}
