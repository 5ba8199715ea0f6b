package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/gatherly/gatherly-api/models"
	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- SEND REQUEST ----------------
func SendFriendRequest(social *services.SocialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID, ok := currentUserID(c)
		if !ok {
			return
		}
		receiverID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := social.SendFriendRequest(c.Request.Context(), senderID, receiverID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "friend request sent"})
	}
}

// ---------------- ACCEPT REQUEST ----------------
// AcceptFriendRequest is called by the receiver; :id is the sender.
func AcceptFriendRequest(social *services.SocialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		receiverID, ok := currentUserID(c)
		if !ok {
			return
		}
		senderID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := social.AcceptFriendRequest(c.Request.Context(), receiverID, senderID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "friend request accepted"})
	}
}

// ---------------- REJECT REQUEST ----------------
// RejectFriendRequest is called by the receiver; :id is the sender.
func RejectFriendRequest(social *services.SocialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		receiverID, ok := currentUserID(c)
		if !ok {
			return
		}
		senderID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := social.RejectFriendRequest(c.Request.Context(), receiverID, senderID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "friend request rejected"})
	}
}

// ---------------- CANCEL REQUEST ----------------
// CancelFriendRequest is called by the sender; :id is the receiver.
func CancelFriendRequest(social *services.SocialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID, ok := currentUserID(c)
		if !ok {
			return
		}
		receiverID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := social.CancelFriendRequest(c.Request.Context(), senderID, receiverID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "friend request cancelled"})
	}
}

// ---------------- REMOVE FRIEND ----------------
func RemoveFriend(social *services.SocialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		friendID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := social.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
	}
}

// ---------------- SUGGESTIONS ----------------
func SuggestedUsers(social *services.SocialService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		suggested, err := social.SuggestedUsers(c.Request.Context(), userID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		if suggested == nil {
			suggested = []models.User{}
		}

		c.JSON(http.StatusOK, suggested)
	}
}
