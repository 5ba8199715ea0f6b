package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- BAN ----------------
func BanUser(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := currentUserID(c)
		if !ok {
			return
		}
		targetID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := admin.BanUser(c.Request.Context(), targetID, adminID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user banned"})
	}
}

// ---------------- UNBAN ----------------
func UnbanUser(admin *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			return
		}
		targetID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := admin.UnbanUser(c.Request.Context(), targetID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user unbanned"})
	}
}
