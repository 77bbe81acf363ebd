package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware requires a valid bearer token and exposes its claims as
// "user_id", "email" and "role" in the gin context.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			helpers.AbortWithError(c, http.StatusUnauthorized, "Missing or malformed token.")
			return
		}

		claims, err := helpers.ParseAccessToken(secret, strings.TrimSpace(token))
		if err != nil {
			helpers.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !slices.Contains(roles, role) {
			helpers.AbortWithError(c, http.StatusForbidden, "You don't have permission to access this resource.")
			return
		}
		c.Next()
	}
}
