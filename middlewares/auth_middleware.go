package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by the auth middlewares.
const (
	ContextUserID      = "userID"
	ContextRole        = "role"
	ContextToken       = "token"
	ContextTokenExpiry = "tokenExpiry"
)

// AuthMiddleware -> validasi Bearer token dan simpan identitas user di context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid token format"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if !authenticate(c, tokenString) {
			return
		}
		c.Next()
	}
}

// authenticate validates the token and fills the context. On failure it has
// already written a 401 and aborted.
func authenticate(c *gin.Context, tokenString string) bool {
	claims, err := utils.ValidateToken(tokenString)
	if err != nil || claims == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
		c.Abort()
		return false
	}
	if claims.UserID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid user ID in token"))
		c.Abort()
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextToken, tokenString)
	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
	}
	return true
}

// CurrentUserID returns the authenticated user id, zero when absent.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
