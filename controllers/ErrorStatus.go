package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatlink/middlewares"
	"chatlink/models"
)

// statusFor maps the error taxonomy to HTTP status codes and user-facing
// messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict, "Request is not pending"
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, models.ErrTransient):
		return http.StatusServiceUnavailable, "Temporary storage failure, please retry"
	default:
		return http.StatusInternalServerError, "Server Error"
	}
}

// authenticatedUserID reads the user id RequireAuth stored on the context.
func authenticatedUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get(middlewares.UserIDKey)
	if !exists {
		return primitive.NilObjectID, false
	}
	hexID, ok := raw.(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}
