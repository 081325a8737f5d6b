package routes

import (
	"github.com/gin-gonic/gin"

	"chatlink/controllers"
	"chatlink/middlewares"
)

func UserRouter(incomingRoutes *gin.Engine, users *controllers.UserController) {
	authed := incomingRoutes.Group("/api", middlewares.RequireAuth)

	authed.GET("/users/:userId", users.ListOthers)
	authed.GET("/me", users.Me)
}
