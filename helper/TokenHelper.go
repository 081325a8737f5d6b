package helper

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatlink/models"
)

const tokenLifetime = time.Hour * 24 * 30

func jwtSecret() []byte {
	return []byte(os.Getenv("SECRET_KEY"))
}

// GenerateToken issues a signed bearer token carrying the user id.
func GenerateToken(userID string) (string, error) {
	return SignToken(userID, jwtSecret(), tokenLifetime)
}

func SignToken(userID string, secret []byte, lifetime time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(lifetime).Unix(),
	})
	return token.SignedString(secret)
}

// ParseToken validates a bearer token and extracts the user id claim.
func ParseToken(tokenString string) (string, error) {
	return VerifyToken(tokenString, jwtSecret())
}

func VerifyToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", models.ErrUnauthorized
	}
	return sub, nil
}

// NewConnectionID returns a random identifier for a realtime connection.
func NewConnectionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("conn-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
