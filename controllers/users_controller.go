package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/gatherly/gatherly-api/models"
	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- ME ----------------
func GetMe(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// ---------------- GET ----------------
func GetUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id")
		if !ok {
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// ---------------- UPDATE PROFILE ----------------
// UpdateProfile patches the authenticated user's own profile. Accepts
// multipart form data so the avatar can ride along with the text fields.
func UpdateProfile(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var input struct {
			Name      *string  `form:"name"`
			City      *string  `form:"city"`
			Interests []string `form:"interests"`
		}
		if err := c.ShouldBind(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		patch := models.UserPatch{Name: input.Name}
		if input.City != nil && *input.City != "" {
			cityID, err := parseIDList([]string{*input.City})
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "invalid city id")
				return
			}
			patch.City = &cityID[0]
		}
		interests, err := parseIDList(input.Interests)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid interest id")
			return
		}
		if len(interests) > 0 {
			patch.Interests = interests
		}

		// --- Avatar upload ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid form data")
			return
		}
		var oldAvatarURL string
		if form != nil && len(form.File["avatar"]) > 0 {
			// Remember the avatar being replaced so the orphaned image can be
			// cleaned up once the new one is persisted.
			current, err := users.GetUser(c.Request.Context(), userID)
			if err != nil {
				utils.RespondServiceError(c, err)
				return
			}
			oldAvatarURL = current.AvatarURL

			fileHeader := form.File["avatar"][0]
			file, err := fileHeader.Open()
			if err != nil {
				utils.RespondWithError(c, http.StatusInternalServerError, "failed to open file")
				return
			}
			url, err := utils.UploadToCloudinary(file, "avatars")
			file.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "avatar upload failed", "details": err.Error()})
				return
			}
			patch.AvatarURL = &url
		}

		user, err := users.UpdateProfile(c.Request.Context(), userID, patch)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		// Best effort: a leftover image is harmless, a failed update is not.
		if patch.AvatarURL != nil && oldAvatarURL != "" {
			_ = utils.DeleteFromCloudinary(oldAvatarURL)
		}

		c.JSON(http.StatusOK, user)
	}
}

// ---------------- DELETE ACCOUNT ----------------
func DeleteAccount(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		if err := users.RemoveAccount(c.Request.Context(), userID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
	}
}
