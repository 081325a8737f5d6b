package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chatlink/models"
)

const queryTimeout = 10 * time.Second

type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(collection *mongo.Collection) *UserStore {
	return &UserStore{collection: collection}
}

func (s *UserStore) Insert(ctx context.Context, user models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("insert user: %w", wrapTransient(err))
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", wrapTransient(err))
	}
	return user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by email: %w", wrapTransient(err))
	}
	return user, nil
}

// ListExcluding returns every user except the given one and the given set,
// used for the "people you may know" view.
func (s *UserStore) ListExcluding(ctx context.Context, userID primitive.ObjectID, excluded []primitive.ObjectID) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if excluded == nil {
		excluded = []primitive.ObjectID{}
	}
	filter := bson.M{
		"_id": bson.M{
			"$ne":  userID,
			"$nin": excluded,
		},
	}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", wrapTransient(err))
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", wrapTransient(err))
	}
	return users, nil
}

// ListByIDs resolves the given ids, preserving their order.
func (s *UserStore) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("list users by id: %w", wrapTransient(err))
	}
	defer cursor.Close(ctx)

	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode users by id: %w", wrapTransient(err))
	}

	byID := make(map[primitive.ObjectID]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// AddFriend adds friendID to the user's friends set. $addToSet makes the
// mutation idempotent, so a retried accept converges.
func (s *UserStore) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$addToSet": bson.M{"friends": friendID}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("add friend: %w", wrapTransient(err))
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RemoveFriend pulls friendID from the user's friends set. Pulling an
// absent friend is not an error.
func (s *UserStore) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$pull": bson.M{"friends": friendID}}
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("remove friend: %w", wrapTransient(err))
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func wrapTransient(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTransient
	}
	return err
}
