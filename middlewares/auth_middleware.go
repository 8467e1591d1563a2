package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/utils"
)

const (
	ContextStaffID = "staff_id"
	ContextRole    = "role"
	ContextToken   = "token"
)

// bearerToken reads "Authorization: Bearer x" or, for websocket upgrades, ?token=x.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.AbortError(c, http.StatusUnauthorized, errors.New("authorization token missing"))
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			utils.AbortError(c, http.StatusUnauthorized, err)
			return
		}

		c.Set(ContextStaffID, claims.StaffID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}
