package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/gatherly/gatherly-api/models"
	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- CREATE ----------------
func CreateComment(comments *services.CommentService) gin.HandlerFunc {
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
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		comment, err := comments.CreateComment(c.Request.Context(), eventID, userID, input.Content)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, comment)
	}
}

// ---------------- LIST ----------------
func ListComments(comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		visible, err := comments.ListByEvent(c.Request.Context(), eventID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		if visible == nil {
			visible = []models.Comment{}
		}

		c.JSON(http.StatusOK, visible)
	}
}

// ---------------- UPDATE ----------------
func UpdateComment(comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		commentID, ok := pathID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		comment, err := comments.UpdateComment(c.Request.Context(), commentID, userID, input.Content)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, comment)
	}
}

// ---------------- DELETE (author) ----------------
func DeleteComment(comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		commentID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := comments.DeleteAsOwner(c.Request.Context(), commentID, userID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
	}
}

// ---------------- DELETE (organizer) ----------------
// ModerateComment lets the organizer of the comment's event hide it without
// touching the author's own copy of the record.
func ModerateComment(comments *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizerID, ok := currentUserID(c)
		if !ok {
			return
		}
		commentID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := comments.DeleteAsOrganizer(c.Request.Context(), commentID, organizerID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "comment removed"})
	}
}
