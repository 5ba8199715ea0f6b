package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "github.com/gatherly/gatherly-api/models"
	services "github.com/gatherly/gatherly-api/services"
	utils "github.com/gatherly/gatherly-api/utils"
)

// ---------------- CREATE ----------------
func CreateEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		organizerID, ok := currentUserID(c)
		if !ok {
			return
		}

		// --- Bind form fields ---
		var input struct {
			Title           string   `form:"title" binding:"required"`
			Description     string   `form:"description"`
			Location        string   `form:"location"`
			City            string   `form:"city"`
			Interests       []string `form:"interests"`
			StartDate       string   `form:"start_date" binding:"required"`
			EndDate         string   `form:"end_date" binding:"required"`
			MaxParticipants int      `form:"max_participants" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		startDate, err := parseFlexibleTime(input.StartDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid start_date format, use RFC3339 or YYYY-MM-DD")
			return
		}
		endDate, err := parseFlexibleTime(input.EndDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid end_date format, use RFC3339 or YYYY-MM-DD")
			return
		}

		draft := services.EventDraft{
			Title:           input.Title,
			Description:     input.Description,
			Location:        input.Location,
			StartDate:       startDate,
			EndDate:         endDate,
			MaxParticipants: input.MaxParticipants,
		}
		if input.City != "" {
			cityID, err := parseIDList([]string{input.City})
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "invalid city id")
				return
			}
			draft.City = cityID[0]
		}
		draft.Interests, err = parseIDList(input.Interests)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid interest id")
			return
		}

		// --- Handle file uploads ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid form data")
			return
		}
		if form != nil {
			for _, fileHeader := range form.File["images"] {
				file, err := fileHeader.Open()
				if err != nil {
					utils.RespondWithError(c, http.StatusInternalServerError, "failed to open file")
					return
				}
				url, err := utils.UploadToCloudinary(file, "events")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "image upload failed",
						"details": err.Error(),
						"file":    fileHeader.Filename,
					})
					return
				}
				draft.Images = append(draft.Images, url)
			}
		}

		event, err := events.CreateEvent(c.Request.Context(), organizerID, draft)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
// ListEvents returns upcoming events ranked for the authenticated user by
// interest overlap and city match.
func ListEvents(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		ranked, err := events.PersonalizedEvents(c.Request.Context(), userID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		if ranked == nil {
			ranked = []models.Event{}
		}

		c.JSON(http.StatusOK, ranked)
	}
}

// ---------------- GET ----------------
func GetEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		event, err := events.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Title           *string  `form:"title"`
			Description     *string  `form:"description"`
			Location        *string  `form:"location"`
			City            *string  `form:"city"`
			Interests       []string `form:"interests"`
			StartDate       *string  `form:"start_date"`
			EndDate         *string  `form:"end_date"`
			MaxParticipants *int     `form:"max_participants"`
			Status          *string  `form:"status"`
			Images          []string `form:"images"` // existing image URLs to keep
		}
		if err := c.ShouldBind(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		patch := models.EventPatch{
			Title:           input.Title,
			Description:     input.Description,
			Location:        input.Location,
			MaxParticipants: input.MaxParticipants,
			Status:          input.Status,
		}
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
		if input.StartDate != nil && *input.StartDate != "" {
			parsed, err := parseFlexibleTime(*input.StartDate)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "invalid start_date format, use RFC3339 or YYYY-MM-DD")
				return
			}
			patch.StartDate = &parsed
		}
		if input.EndDate != nil && *input.EndDate != "" {
			parsed, err := parseFlexibleTime(*input.EndDate)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "invalid end_date format, use RFC3339 or YYYY-MM-DD")
				return
			}
			patch.EndDate = &parsed
		}

		// --- Handle new image uploads ---
		newImageURLs := []string{}
		form, _ := c.MultipartForm()
		if form != nil {
			for _, fileHeader := range form.File["new_images"] {
				file, err := fileHeader.Open()
				if err != nil {
					utils.RespondWithError(c, http.StatusInternalServerError, "failed to open image")
					return
				}
				url, err := utils.UploadToCloudinary(file, "events")
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
					return
				}
				newImageURLs = append(newImageURLs, url)
			}
		}
		// Merge images: keep provided URLs, add new uploads.
		if input.Images != nil || len(newImageURLs) > 0 {
			patch.Images = append(input.Images, newImageURLs...)
		}

		event, err := events.UpdateEvent(c.Request.Context(), eventID, actorID, patch)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event updated successfully",
			"event":   event,
		})
	}
}

// ---------------- DELETE ----------------
// DeleteEvent archives the event; registrations, ratings and comments keep
// resolving against the archived document.
func DeleteEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := events.RemoveEvent(c.Request.Context(), eventID, actorID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      eventID.Hex(),
		})
	}
}

// ---------------- REGISTER ----------------
func RegisterForEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := events.RegisterForEvent(c.Request.Context(), eventID, userID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "registered for event"})
	}
}

// ---------------- CANCEL REGISTRATION ----------------
func CancelRegistration(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := events.CancelRegistration(c.Request.Context(), eventID, userID); err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "registration cancelled"})
	}
}

// ---------------- AVAILABLE SPOTS ----------------
func AvailableSpots(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := pathID(c, "id")
		if !ok {
			return
		}

		spots, err := events.AvailableSpots(c.Request.Context(), eventID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"event_id":        eventID.Hex(),
			"available_spots": spots,
		})
	}
}
