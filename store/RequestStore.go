package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatlink/models"
)

type RequestStore struct {
	collection *mongo.Collection
}

func NewRequestStore(collection *mongo.Collection) *RequestStore {
	return &RequestStore{collection: collection}
}

func (s *RequestStore) Insert(ctx context.Context, request models.FriendRequest) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, request)
	if err != nil {
		// the partial unique index on (from, to, status=pending) rejects
		// a concurrent duplicate the count check raced past
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("insert request: %w", wrapTransient(err))
	}
	return nil
}

func (s *RequestStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.FriendRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var request models.FriendRequest
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.FriendRequest{}, models.ErrNotFound
		}
		return models.FriendRequest{}, fmt.Errorf("find request: %w", wrapTransient(err))
	}
	return request, nil
}

// CountPending reports how many pending requests exist for the ordered
// (from, to) pair. The workflow engine allows at most one.
func (s *RequestStore) CountPending(ctx context.Context, from, to primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"from": from, "to": to, "status": models.RequestStatusPending}
	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", wrapTransient(err))
	}
	return count, nil
}

func (s *RequestStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete request: %w", wrapTransient(err))
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeletePending removes any pending request for the ordered (from, to)
// pair. Used to clear crossed requests on accept; deleting nothing is fine.
func (s *RequestStore) DeletePending(ctx context.Context, from, to primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"from": from, "to": to, "status": models.RequestStatusPending}
	_, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete pending requests: %w", wrapTransient(err))
	}
	return nil
}

func (s *RequestStore) ListReceived(ctx context.Context, to primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(ctx, bson.M{"to": to})
}

func (s *RequestStore) ListSent(ctx context.Context, from primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(ctx, bson.M{"from": from})
}

func (s *RequestStore) list(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", wrapTransient(err))
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode requests: %w", wrapTransient(err))
	}
	return requests, nil
}
