// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "Authentication required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RoleRequired gates a route to the given roles. Run it after AuthRequired.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("user_role")
		if !exists {
			utils.ForbiddenResponse(c, "Access denied")
			c.Abort()
			return
		}

		role, ok := roleValue.(string)
		if !ok {
			utils.ForbiddenResponse(c, "Access denied")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c, "Access denied")
		c.Abort()
	}
}

func StaffRequired() gin.HandlerFunc {
	return RoleRequired(models.UserRoleAdmin, models.UserRoleSuperAdmin, models.UserRoleEditor)
}

func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.UserRoleAdmin, models.UserRoleSuperAdmin)
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}
