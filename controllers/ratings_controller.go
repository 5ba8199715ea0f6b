package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- CREATE ----------------
func CreateRating(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Score int `json:"score"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		rating, err := ratings.CreateRating(c.Request.Context(), eventID, userID, input.Score)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, rating)
	}
}

// ---------------- AVERAGE ----------------
func EventAverageRating(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		avg, err := ratings.EventAverageRating(c.Request.Context(), eventID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"event_id":       eventID.Hex(),
			"average_rating": avg,
		})
	}
}

// ---------------- DELETE ----------------
func CancelRating(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := ratings.CancelRating(c.Request.Context(), eventID, userID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "rating removed"})
	}
}
