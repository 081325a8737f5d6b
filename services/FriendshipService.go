package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/models"
)

// UserDirectory is the slice of the user store the workflow engine needs.
type UserDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	ListExcluding(ctx context.Context, userID primitive.ObjectID, excluded []primitive.ObjectID) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
}

type RequestDirectory interface {
	Insert(ctx context.Context, request models.FriendRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.FriendRequest, error)
	CountPending(ctx context.Context, from, to primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeletePending(ctx context.Context, from, to primitive.ObjectID) error
	ListReceived(ctx context.Context, to primitive.ObjectID) ([]models.FriendRequest, error)
	ListSent(ctx context.Context, from primitive.ObjectID) ([]models.FriendRequest, error)
}

// FriendshipService enforces the request lifecycle and keeps both parties'
// friend sets consistent. Friendship is symmetric: A is in B's set iff B is
// in A's.
type FriendshipService struct {
	Users    UserDirectory
	Requests RequestDirectory
	Now      func() time.Time
}

func NewFriendshipService(users UserDirectory, requests RequestDirectory) *FriendshipService {
	return &FriendshipService{
		Users:    users,
		Requests: requests,
		Now:      time.Now,
	}
}

// SendRequest creates a pending request from sender to receiver. At most
// one pending request may exist per ordered pair; a duplicate, a request to
// self, or a request to an existing friend is a conflict.
func (s *FriendshipService) SendRequest(ctx context.Context, senderID, receiverID primitive.ObjectID, message string) (primitive.ObjectID, error) {
	if senderID == receiverID {
		return primitive.NilObjectID, models.ErrConflict
	}

	sender, err := s.Users.FindByID(ctx, senderID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.Users.FindByID(ctx, receiverID); err != nil {
		return primitive.NilObjectID, err
	}

	for _, friendID := range sender.Friends {
		if friendID == receiverID {
			return primitive.NilObjectID, models.ErrConflict
		}
	}

	count, err := s.Requests.CountPending(ctx, senderID, receiverID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if count > 0 {
		return primitive.NilObjectID, models.ErrConflict
	}

	request := models.FriendRequest{
		ID:        primitive.NewObjectID(),
		From:      senderID,
		To:        receiverID,
		Message:   message,
		Status:    models.RequestStatusPending,
		CreatedAt: s.Now(),
	}
	if err := s.Requests.Insert(ctx, request); err != nil {
		return primitive.NilObjectID, err
	}
	return request.ID, nil
}

// RespondToRequest resolves a pending request addressed to userID. Accepting
// removes the request, establishes the symmetric friendship and clears any
// crossed pending request the recipient had sent back. Rejecting just
// removes the request.
func (s *FriendshipService) RespondToRequest(ctx context.Context, userID, requestID primitive.ObjectID, accept bool) error {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return err
	}

	request, err := s.Requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.To != userID {
		return models.ErrNotFound
	}
	if request.Status != models.RequestStatusPending {
		return models.ErrInvalidState
	}

	if !accept {
		return s.Requests.Delete(ctx, requestID)
	}

	// The sender must still exist before the friendship is established.
	if _, err := s.Users.FindByID(ctx, request.From); err != nil {
		return err
	}

	// Friends first, request deletion last. The $addToSet mutations are
	// idempotent, and while the request document exists a failed accept
	// can be replayed; deleting first would strand a one-sided
	// friendship with no request left to retry against.
	if err := s.Users.AddFriend(ctx, userID, request.From); err != nil {
		return err
	}
	if err := s.Users.AddFriend(ctx, request.From, userID); err != nil {
		return err
	}

	if err := s.Requests.Delete(ctx, requestID); err != nil {
		return err
	}

	// Clear a crossed request (recipient had also asked the sender).
	return s.Requests.DeletePending(ctx, userID, request.From)
}

// CancelRequest lets the sender withdraw a request that is still pending.
func (s *FriendshipService) CancelRequest(ctx context.Context, senderID, requestID primitive.ObjectID) error {
	request, err := s.Requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.From != senderID {
		return models.ErrNotFound
	}
	if request.Status != models.RequestStatusPending {
		return models.ErrInvalidState
	}
	return s.Requests.Delete(ctx, requestID)
}

// RemoveFriend tears the friendship down from both sides. Removing a
// non-friend is not an error.
func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	if err := s.Users.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	return s.Users.RemoveFriend(ctx, friendID, userID)
}

// ListOthers returns everyone except the user and their current friends.
func (s *FriendshipService) ListOthers(ctx context.Context, userID primitive.ObjectID) ([]models.Profile, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	others, err := s.Users.ListExcluding(ctx, userID, user.Friends)
	if err != nil {
		return nil, err
	}
	return profiles(others), nil
}

// ListReceived returns the user's incoming requests with each sender
// resolved to their public profile.
func (s *FriendshipService) ListReceived(ctx context.Context, userID primitive.ObjectID) ([]models.ReceivedRequest, error) {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.Requests.ListReceived(ctx, userID)
	if err != nil {
		return nil, err
	}

	senders, err := s.resolve(ctx, requests, func(r models.FriendRequest) primitive.ObjectID { return r.From })
	if err != nil {
		return nil, err
	}

	received := make([]models.ReceivedRequest, 0, len(requests))
	for _, request := range requests {
		sender, ok := senders[request.From]
		if !ok {
			continue
		}
		received = append(received, models.ReceivedRequest{
			ID:      request.ID,
			From:    sender.Profile(),
			Message: request.Message,
			Status:  request.Status,
		})
	}
	return received, nil
}

// ListSent returns the requests the user has issued, each paired with the
// recipient's public profile.
func (s *FriendshipService) ListSent(ctx context.Context, userID primitive.ObjectID) ([]models.SentRequest, error) {
	requests, err := s.Requests.ListSent(ctx, userID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.resolve(ctx, requests, func(r models.FriendRequest) primitive.ObjectID { return r.To })
	if err != nil {
		return nil, err
	}

	sent := make([]models.SentRequest, 0, len(requests))
	for _, request := range requests {
		recipient, ok := recipients[request.To]
		if !ok {
			continue
		}
		sent = append(sent, models.SentRequest{
			User:    recipient.Profile(),
			Request: request,
		})
	}
	return sent, nil
}

// ListFriends returns the user's friends in insertion order.
func (s *FriendshipService) ListFriends(ctx context.Context, userID primitive.ObjectID) ([]models.Profile, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.Users.ListByIDs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}
	return profiles(friends), nil
}

func (s *FriendshipService) resolve(ctx context.Context, requests []models.FriendRequest, key func(models.FriendRequest) primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	seen := make(map[primitive.ObjectID]bool, len(requests))
	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, request := range requests {
		id := key(request)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	users, err := s.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func profiles(users []models.User) []models.Profile {
	out := make([]models.Profile, 0, len(users))
	for _, user := range users {
		out = append(out, user.Profile())
	}
	return out
}
