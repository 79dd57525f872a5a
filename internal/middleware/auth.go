package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

// ParseToken validates an HS256 token and returns the user id claim.
func ParseToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("missing user_id claim")
	}

	return int(userID), nil
}

// AuthMiddleware requires a valid bearer token for an active user. It loads
// the user row so downstream handlers get user_id and is_staff without
// trusting stale claims.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		userID, err := ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User account is disabled"})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("is_staff", user.IsStaff || user.IsSuperuser)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the requester identity when a valid token is
// present but lets anonymous requests through. Public reads use it to
// personalize responses.
func OptionalAuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		userID, err := ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("is_staff", user.IsStaff || user.IsSuperuser)
		c.Next()
	}
}
