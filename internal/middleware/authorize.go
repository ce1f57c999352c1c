package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles must run after StaffAuth. When auth is disabled there are no
// claims and nothing is enforced.
func RequireRoles(enabled bool, roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		claims, ok := StaffClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if _, ok := roleSet[claims.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
