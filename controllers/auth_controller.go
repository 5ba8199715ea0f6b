package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/gatherly/gatherly-api/config"
	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- REGISTER ----------------
func Register(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
			Role     string `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		user, err := users.Register(c.Request.Context(), input.Name, input.Email, input.Password, input.Role)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// ---------------- LOGIN ----------------
func Login(users *services.UserService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		user, err := users.Authenticate(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		token, err := utils.GenerateAccessToken(cfg.JWTSecret, cfg.AccessTTL, user.ID.Hex(), user.Role)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "could not issue token")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user,
		})
	}
}
