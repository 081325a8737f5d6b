package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/services"
)

type MessageController struct {
	Messages *services.MessageService
}

func NewMessageController(messages *services.MessageService) *MessageController {
	return &MessageController{Messages: messages}
}

type sendMessageBody struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	var body sendMessageBody
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

	message, err := mc.Messages.Send(c.Request.Context(), senderID, receiverID, body.Message)
	if err != nil {
		status, errMessage := statusFor(err)
		c.JSON(status, gin.H{"message": errMessage})
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (mc *MessageController) GetMessages(c *gin.Context) {
	senderID, err := primitive.ObjectIDFromHex(c.Query("senderId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid sender ID format"})
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(c.Query("receiverId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid receiver ID format"})
		return
	}

	conversation, err := mc.Messages.ListConversation(c.Request.Context(), senderID, receiverID)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, conversation)
}
