package controllers

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/helper"
	"chatlink/presence"
	"chatlink/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn *websocket.Conn
	mut  sync.Mutex // serializes writes on the shared connection
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.conn.WriteJSON(v)
}

// ChatGateway owns the realtime side: it upgrades connections, records
// presence, and pushes events to whichever connection a user currently
// holds. It implements services.Pusher.
type ChatGateway struct {
	registry *presence.Registry
	messages *services.MessageService

	mut   sync.Mutex
	conns map[string]*wsClient // connectionID -> client
}

func NewChatGateway(registry *presence.Registry) *ChatGateway {
	return &ChatGateway{
		registry: registry,
		conns:    make(map[string]*wsClient),
	}
}

// SetMessageService wires the message service in after construction; the
// service needs the gateway as its pusher, so the two reference each other.
func (g *ChatGateway) SetMessageService(messages *services.MessageService) {
	g.messages = messages
}

func (g *ChatGateway) HandleWS(c *gin.Context) {
	userID := c.Query("userId")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("Failed to upgrade connection:", err)
		return
	}

	client := &wsClient{conn: conn}
	connectionID := helper.NewConnectionID()

	g.mut.Lock()
	g.conns[connectionID] = client
	g.mut.Unlock()

	// the mobile client sends the literal string "undefined" before it
	// knows its own id
	registered := userID != "" && userID != "undefined"
	if registered {
		g.registry.Register(userID, connectionID)
	}

	g.readLoop(client)

	if registered {
		g.registry.Unregister(userID, connectionID)
	}
	g.mut.Lock()
	delete(g.conns, connectionID)
	g.mut.Unlock()

	if err := conn.Close(); err != nil {
		log.Println("Failed to close connection:", err)
	}
}

type inboundEvent struct {
	Event      string `json:"event"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (g *ChatGateway) readLoop(client *wsClient) {
	for {
		var event inboundEvent
		if err := client.conn.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Read error:", err)
			}
			return
		}
		if event.Event != "sendMessage" {
			continue
		}

		senderID, err := primitive.ObjectIDFromHex(event.SenderID)
		if err != nil {
			continue
		}
		receiverID, err := primitive.ObjectIDFromHex(event.ReceiverID)
		if err != nil {
			continue
		}

		// same persist-then-push path as the REST endpoint, so both
		// transports share one message history
		if _, err := g.messages.Send(context.Background(), senderID, receiverID, event.Message); err != nil {
			log.Println("Error sending message:", err)
		}
	}
}

type outboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Push delivers an event to the user's active connection, best effort. A
// failed or stale write is logged and dropped; the caller has already
// persisted whatever mattered.
func (g *ChatGateway) Push(userID string, event string, payload interface{}) {
	connectionID, ok := g.registry.Lookup(userID)
	if !ok {
		return
	}

	g.mut.Lock()
	client, ok := g.conns[connectionID]
	g.mut.Unlock()
	if !ok {
		return
	}

	go func() {
		if err := client.writeJSON(outboundEvent{Event: event, Data: payload}); err != nil {
			log.Println("Write error:", err)
		}
	}()
}
