package routes

import (
	"github.com/gin-gonic/gin"

	"chatlink/controllers"
)

func AuthRouter(incomingRoutes *gin.Engine, users *controllers.UserController) {
	incomingRoutes.POST("/api/register", users.Register)
	incomingRoutes.POST("/api/login", users.Login)
	incomingRoutes.GET("/api/test", users.Test)
}
