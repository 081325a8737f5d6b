package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/models"
)

type MessageDirectory interface {
	Insert(ctx context.Context, message models.Message) error
	ListConversation(ctx context.Context, userA, userB primitive.ObjectID) ([]models.Message, error)
}

// Pusher delivers an event to a user's active realtime connection, if any.
// Delivery is best effort; failures must not surface to the sender.
type Pusher interface {
	Push(userID string, event string, payload interface{})
}

// MessageService persists messages and fans them out to online recipients.
// Both the REST endpoint and the websocket event route through Send, so the
// two transports share one message history.
type MessageService struct {
	Messages MessageDirectory
	Users    UserDirectory
	Gateway  Pusher
	Now      func() time.Time
}

func NewMessageService(messages MessageDirectory, users UserDirectory, gateway Pusher) *MessageService {
	return &MessageService{
		Messages: messages,
		Users:    users,
		Gateway:  gateway,
		Now:      time.Now,
	}
}

// Send persists the message, then attempts an immediate push to the
// recipient. Persistence is the success criterion; the push outcome never
// changes the result.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID primitive.ObjectID, text string) (models.ConversationMessage, error) {
	if senderID.IsZero() || receiverID.IsZero() || strings.TrimSpace(text) == "" {
		return models.ConversationMessage{}, models.ErrInvalidInput
	}

	sender, err := s.Users.FindByID(ctx, senderID)
	if err != nil {
		return models.ConversationMessage{}, err
	}

	message := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    text,
		Timestamp:  s.Now(),
	}
	if err := s.Messages.Insert(ctx, message); err != nil {
		return models.ConversationMessage{}, err
	}

	resolved := models.ConversationMessage{
		ID:         message.ID,
		Sender:     models.MessageSender{ID: sender.ID, Name: sender.Name},
		ReceiverID: receiverID,
		Message:    text,
		Timestamp:  message.Timestamp,
	}

	if s.Gateway != nil {
		s.Gateway.Push(receiverID.Hex(), "newMessage", resolved)
		s.Gateway.Push(receiverID.Hex(), "receiveMessage", map[string]interface{}{
			"senderId": senderID.Hex(),
			"message":  text,
		})
	}
	return resolved, nil
}

// ListConversation returns every message between the two users, oldest
// first, with senders resolved to id and name.
func (s *MessageService) ListConversation(ctx context.Context, userA, userB primitive.ObjectID) ([]models.ConversationMessage, error) {
	messages, err := s.Messages.ListConversation(ctx, userA, userB)
	if err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, 2)
	for _, id := range []primitive.ObjectID{userA, userB} {
		user, err := s.Users.FindByID(ctx, id)
		if err == nil {
			names[id] = user.Name
		}
	}

	conversation := make([]models.ConversationMessage, 0, len(messages))
	for _, message := range messages {
		conversation = append(conversation, models.ConversationMessage{
			ID:         message.ID,
			Sender:     models.MessageSender{ID: message.SenderID, Name: names[message.SenderID]},
			ReceiverID: message.ReceiverID,
			Message:    message.Message,
			Timestamp:  message.Timestamp,
		})
	}
	return conversation, nil
}
