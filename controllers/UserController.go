package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"chatlink/helper"
	"chatlink/models"
	"chatlink/services"
)

var validate = validator.New()

// UserAccounts is the slice of the user store the auth handlers need.
type UserAccounts interface {
	Insert(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

type UserController struct {
	Users   UserAccounts
	Friends *services.FriendshipService
	// Health reports the storage connection state for the test endpoint.
	Health func() string
}

func NewUserController(users UserAccounts, friends *services.FriendshipService, health func() string) *UserController {
	return &UserController{Users: users, Friends: friends, Health: health}
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

func (u *UserController) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      body.Name,
		Email:     body.Email,
		Password:  body.Password,
		Image:     body.Image,
		CreatedAt: time.Now(),
		Friends:   []primitive.ObjectID{},
	}
	if err := validate.Struct(user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering the user"})
		return
	}
	user.Password = string(hashed)

	if err := u.Users.Insert(c.Request.Context(), user); err != nil {
		status, message := statusFor(err)
		if status == http.StatusConflict {
			message = "Email already exists"
		}
		c.JSON(status, gin.H{"message": message})
		return
	}

	token, err := helper.GenerateToken(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error registering the user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "message": "User registered successfully!"})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (u *UserController) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if body.Email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email or Password is empty"})
		return
	}

	user, err := u.Users.FindByEmail(c.Request.Context(), body.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid password"})
		return
	}

	token, err := helper.GenerateToken(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error logging in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns the caller's profile with friends resolved, never the
// credential hash.
func (u *UserController) Me(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	user, err := u.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		status, _ := statusFor(err)
		c.JSON(status, gin.H{"message": "User not found"})
		return
	}

	friends, err := u.Friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"_id":       user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"image":     user.Image,
		"createdAt": user.CreatedAt,
		"friends":   friends,
	})
}

// ListOthers returns everyone except the viewer and their friends.
func (u *UserController) ListOthers(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user ID format"})
		return
	}

	others, err := u.Friends.ListOthers(c.Request.Context(), userID)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.JSON(http.StatusOK, others)
}

// Test reports server and database health.
func (u *UserController) Test(c *gin.Context) {
	state := "unknown"
	if u.Health != nil {
		state = u.Health()
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Server is running",
		"database": gin.H{
			"status":      state,
			"isConnected": state == "connected",
		},
	})
}
