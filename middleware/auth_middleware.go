package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/gatherly/gatherly-api/models"
	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// AuthMiddleware validates the bearer token and re-reads the account on every
// request. The re-read is what makes bans and account archival take effect
// immediately instead of at token expiry. On success it stores "user_id" and
// "role" in the gin context.
func AuthMiddleware(secret string, users services.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.RespondWithError(c, http.StatusUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid token subject")
			c.Abort()
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "internal server error")
			c.Abort()
			return
		}
		if user == nil || user.IsArchived {
			utils.RespondWithError(c, http.StatusUnauthorized, "account no longer exists")
			c.Abort()
			return
		}
		if user.IsBanned {
			utils.RespondWithError(c, http.StatusForbidden, "account banned")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID.Hex())
		c.Set("role", user.Role)
		c.Next()
	}
}

// RequireAdmin gates a route group on the admin role. Must run after
// AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			utils.RespondWithError(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
