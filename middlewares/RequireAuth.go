package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatlink/helper"
)

// UserIDKey is where RequireAuth stores the authenticated user id on the
// request context.
const UserIDKey = "userId"

// RequireAuth validates the Authorization bearer token and attaches the
// caller's user id to the context.
func RequireAuth(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	userID, err := helper.ParseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	c.Set(UserIDKey, userID)
	c.Next()
}
