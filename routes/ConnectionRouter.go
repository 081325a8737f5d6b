package routes

import (
	"github.com/gin-gonic/gin"

	"chatlink/controllers"
	"chatlink/middlewares"
)

func ConnectionRouter(incomingRoutes *gin.Engine, connections *controllers.ConnectionController) {
	authed := incomingRoutes.Group("/api", middlewares.RequireAuth)

	authed.POST("/sendrequest", connections.SendRequest)
	authed.GET("/getrequests/:userId", connections.GetRequests)
	authed.GET("/sentrequests/:userId", connections.GetSentRequests)
	authed.POST("/acceptrequest", connections.AcceptRequest)
	authed.POST("/rejectrequest", connections.RejectRequest)
	authed.POST("/cancelrequest", connections.CancelRequest)
	authed.POST("/removefriend", connections.RemoveFriend)
	authed.GET("/user/:userId", connections.GetFriends)
}
