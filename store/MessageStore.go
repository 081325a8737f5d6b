package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatlink/models"
)

type MessageStore struct {
	collection *mongo.Collection
}

func NewMessageStore(collection *mongo.Collection) *MessageStore {
	return &MessageStore{collection: collection}
}

func (s *MessageStore) Insert(ctx context.Context, message models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("insert message: %w", wrapTransient(err))
	}
	return nil
}

// ListConversation returns every message between the two users in either
// direction, oldest first.
func (s *MessageStore) ListConversation(ctx context.Context, userA, userB primitive.ObjectID) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"$or": []bson.M{
			{"senderId": userA, "receiverId": userB},
			{"senderId": userB, "receiverId": userA},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timeStamp", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", wrapTransient(err))
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", wrapTransient(err))
	}
	return messages, nil
}
