package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/services"
)

type ConnectionController struct {
	Friends *services.FriendshipService
}

func NewConnectionController(friends *services.FriendshipService) *ConnectionController {
	return &ConnectionController{Friends: friends}
}

type sendRequestBody struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (cc *ConnectionController) SendRequest(c *gin.Context) {
	var body sendRequestBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	senderID, err := primitive.ObjectIDFromHex(body.SenderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sender ID format"})
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(body.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid receiver ID format"})
		return
	}

	// only the logged-in user may send requests on their own behalf
	if authID, ok := authenticatedUserID(c); ok && authID != senderID {
		c.JSON(http.StatusForbidden, gin.H{"message": "sender is not the logged-in user"})
		return
	}

	requestID, err := cc.Friends.SendRequest(c.Request.Context(), senderID, receiverID, body.Message)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request sent successfully", "requestId": requestID})
}

func (cc *ConnectionController) GetRequests(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}

	requests, err := cc.Friends.ListReceived(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (cc *ConnectionController) GetSentRequests(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}

	sent, err := cc.Friends.ListSent(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, sent)
}

type respondRequestBody struct {
	UserID    string `json:"userId"`
	RequestID string `json:"requestId"`
}

func (cc *ConnectionController) AcceptRequest(c *gin.Context) {
	cc.respond(c, true)
}

func (cc *ConnectionController) RejectRequest(c *gin.Context) {
	cc.respond(c, false)
}

func (cc *ConnectionController) respond(c *gin.Context, accept bool) {
	var body respondRequestBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}
	requestID, err := primitive.ObjectIDFromHex(body.RequestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request ID format"})
		return
	}

	if err := cc.Friends.RespondToRequest(c.Request.Context(), userID, requestID, accept); err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}

	if accept {
		c.JSON(http.StatusOK, gin.H{"message": "Request accepted successfully"})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Request rejected successfully"})
	}
}

func (cc *ConnectionController) CancelRequest(c *gin.Context) {
	var body respondRequestBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	senderID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}
	requestID, err := primitive.ObjectIDFromHex(body.RequestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request ID format"})
		return
	}

	if err := cc.Friends.CancelRequest(c.Request.Context(), senderID, requestID); err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled successfully"})
}

type removeFriendBody struct {
	UserID   string `json:"userId"`
	FriendID string `json:"friendId"`
}

func (cc *ConnectionController) RemoveFriend(c *gin.Context) {
	var body removeFriendBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	userID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}
	friendID, err := primitive.ObjectIDFromHex(body.FriendID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid friend ID format"})
		return
	}

	if err := cc.Friends.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend removed successfully"})
}

// GetFriends returns the user's friend list as public profiles.
func (cc *ConnectionController) GetFriends(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}

	friends, err := cc.Friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, friends)
}
