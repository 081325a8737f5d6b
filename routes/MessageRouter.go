package routes

import (
	"github.com/gin-gonic/gin"

	"chatlink/controllers"
	"chatlink/middlewares"
)

func MessageRouter(incomingRoutes *gin.Engine, messages *controllers.MessageController) {
	authed := incomingRoutes.Group("/api", middlewares.RequireAuth)

	authed.POST("/sendMessage", messages.SendMessage)
	authed.GET("/messages", messages.GetMessages)
}
