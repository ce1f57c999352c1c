package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mk3hierros/internal/security"
)

const staffClaimsKey = "staff_claims"

// StaffAuth requires a bearer staff token signed with secret. With an empty
// secret every request passes, which is how the shop ran before tokens.
func StaffAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := security.ParseStaffToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(staffClaimsKey, *claims)
		c.Next()
	}
}

// StaffClaims returns the claims stored by StaffAuth, if any.
func StaffClaims(c *gin.Context) (security.StaffClaims, bool) {
	val, ok := c.Get(staffClaimsKey)
	if !ok {
		return security.StaffClaims{}, false
	}
	claims, ok := val.(security.StaffClaims)
	return claims, ok
}
