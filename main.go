package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chatlink/controllers"
	"chatlink/database"
	"chatlink/initializers"
	"chatlink/presence"
	"chatlink/routes"
	"chatlink/services"
	"chatlink/store"
)

func init() {
	initializers.LoadEnvVariables()
}

func main() {
	if err := database.EnsureIndexes(database.Client); err != nil {
		log.Fatal(err)
	}

	users := store.NewUserStore(database.OpenCollection(database.Client, "user-collection"))
	requests := store.NewRequestStore(database.OpenCollection(database.Client, "request-collection"))
	messages := store.NewMessageStore(database.OpenCollection(database.Client, "message-collection"))

	registry := presence.NewRegistry()
	gateway := controllers.NewChatGateway(registry)

	friendService := services.NewFriendshipService(users, requests)
	messageService := services.NewMessageService(messages, users, gateway)
	gateway.SetMessageService(messageService)

	userController := controllers.NewUserController(users, friendService, func() string {
		return database.ConnectionState(database.Client)
	})
	connectionController := controllers.NewConnectionController(friendService)
	messageController := controllers.NewMessageController(messageService)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRouter(router, userController)
	routes.UserRouter(router, userController)
	routes.ConnectionRouter(router, connectionController)
	routes.MessageRouter(router, messageController)
	routes.ChatRouter(router, gateway)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
