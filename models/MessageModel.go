package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

type Message struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	SenderID   primitive.ObjectID `json:"senderId" bson:"senderId"`
	ReceiverID primitive.ObjectID `json:"receiverId" bson:"receiverId"`
	Message    string             `json:"message" bson:"message"`
	Timestamp  time.Time          `json:"timeStamp" bson:"timeStamp"`
}

// ConversationMessage is a message with the sender resolved to id and name
// for rendering a chat thread.
type ConversationMessage struct {
	ID         primitive.ObjectID `json:"_id"`
	Sender     MessageSender      `json:"senderId"`
	ReceiverID primitive.ObjectID `json:"receiverId"`
	Message    string             `json:"message"`
	Timestamp  time.Time          `json:"timeStamp"`
}

type MessageSender struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}
