package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/demeter/services"
	"github.com/yeremiapane/demeter/utils"
)

// RoleCheck admits only the listed roles. Must run after AuthMiddleware.
func RoleCheck(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.AbortJSON(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		if _, ok := allowed[role.(string)]; !ok {
			utils.AbortJSON(c, http.StatusForbidden, services.NoPermission.String())
			return
		}
		c.Next()
	}
}
