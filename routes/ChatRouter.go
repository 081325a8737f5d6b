package routes

import (
	"github.com/gin-gonic/gin"

	"chatlink/controllers"
)

func ChatRouter(incomingRoutes *gin.Engine, gateway *controllers.ChatGateway) {
	incomingRoutes.GET("/ws", gateway.HandleWS)
}
