package middleware

import (
	"errors"
	"net/http"
	"strings"

	"teamhub/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserIDKey is the gin context key under which the authenticated user's ID is stored
const UserIDKey = "userID"

// TokenKey is the gin context key holding the raw bearer token of the request
const TokenKey = "token"

// JWTAuthMiddleware проверяет Bearer-токен и кладет ID пользователя в контекст.
// Отозванные токены (после logout) отклоняются, если настроен TokenStore.
func JWTAuthMiddleware(jwtSecret string, tokens *cache.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}
		tokenStr := parts[1]

		userID, err := ParseUserID(jwtSecret, tokenStr)
		if err != nil {
			if errors.Is(err, errInvalidUserID) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			}
			return
		}

		if tokens.IsRevoked(c.Request.Context(), tokenStr) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(TokenKey, tokenStr)
		c.Next()
	}
}

var errInvalidUserID = errors.New("invalid user id claim")

// ParseUserID validates the token signature and extracts the user_id claim.
// Shared with the websocket endpoint, which carries the token in a query
// parameter instead of a header.
func ParseUserID(jwtSecret, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, errInvalidUserID
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidUserID
	}
	return userID, nil
}
