package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	config "github.com/sriram/festival-backend-go/config"
	middleware "github.com/sriram/festival-backend-go/middleware"
	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/services"
	utils "github.com/sriram/festival-backend-go/utils"
)

// parseDate accepts RFC3339 plus the date-only formats the admin dashboard
// submits.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	layouts := []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, utils.Validation("invalid date format, use RFC3339 or YYYY-MM-DD")
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Name                string   `form:"name" binding:"required"`
			EventType           string   `form:"event_type"`
			ClubInCharge        string   `form:"clubInCharge"`
			OrganizingClub      string   `form:"organizing_club"`
			Description         string   `form:"description"`
			Venue               string   `form:"venue"`
			Rules               []string `form:"rules"`
			EventDate           string   `form:"event_date"`
			ApplicationDeadline string   `form:"applicationDeadline"`
			MaxApplications     int      `form:"maxApplications"`
			MinTeamSize         *int     `form:"minTeamSize"`
			MaxTeamSize         *int     `form:"maxTeamSize"`
			RegistrationAmount  float64  `form:"registrationAmount"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eventDate, err := parseDate(input.EventDate)
		if err != nil {
			respondError(c, err)
			return
		}
		deadline, err := parseDate(input.ApplicationDeadline)
		if err != nil {
			respondError(c, err)
			return
		}

		// Optional poster upload, multipart key "poster".
		posterURL := ""
		if fileHeader, err := c.FormFile("poster"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open poster"})
				return
			}
			posterURL, err = utils.UploadPosterToCloudinary(file, fileHeader)
			file.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "poster upload failed"})
				return
			}
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		svc := services.NewEventService(cfg.Store)
		event, err := svc.CreateEvent(ctx, principal, services.EventInput{
			Name:                input.Name,
			EventType:           input.EventType,
			ClubInCharge:        input.ClubInCharge,
			OrganizingClub:      input.OrganizingClub,
			Description:         input.Description,
			Venue:               input.Venue,
			Rules:               input.Rules,
			EventDate:           eventDate,
			ApplicationDeadline: deadline,
			MaxApplications:     input.MaxApplications,
			MinTeamSize:         input.MinTeamSize,
			MaxTeamSize:         input.MaxTeamSize,
			RegistrationAmount:  input.RegistrationAmount,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		if posterURL != "" {
			if event, err = svc.UpdateEvent(ctx, principal, event.ID.Hex(), services.EventUpdate{PosterURL: &posterURL}); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		events, err := services.NewEventService(cfg.Store).ListActiveEvents(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(events) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}

		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		event, err := services.NewEventService(cfg.Store).GetEvent(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Name                *string `form:"name"`
			Description         *string `form:"description"`
			Venue               *string `form:"venue"`
			EventDate           string  `form:"event_date"`
			ApplicationDeadline string  `form:"applicationDeadline"`
			MaxApplications     *int    `form:"maxApplications"`
			MinTeamSize         *int    `form:"minTeamSize"`
			MaxTeamSize         *int    `form:"maxTeamSize"`
			IsActive            *bool   `form:"isActive"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		upd := services.EventUpdate{
			Name:            input.Name,
			Description:     input.Description,
			Venue:           input.Venue,
			MaxApplications: input.MaxApplications,
			MinTeamSize:     input.MinTeamSize,
			MaxTeamSize:     input.MaxTeamSize,
			IsActive:        input.IsActive,
		}

		var err error
		if upd.EventDate, err = parseDate(input.EventDate); err != nil {
			respondError(c, err)
			return
		}
		if upd.ApplicationDeadline, err = parseDate(input.ApplicationDeadline); err != nil {
			respondError(c, err)
			return
		}

		// New poster replaces the old one, multipart key "poster".
		var oldPoster string
		if fileHeader, err := c.FormFile("poster"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open poster"})
				return
			}
			url, err := utils.UploadPosterToCloudinary(file, fileHeader)
			file.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "poster upload failed"})
				return
			}
			upd.PosterURL = &url
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		svc := services.NewEventService(cfg.Store)
		if upd.PosterURL != nil {
			if existing, err := svc.GetEvent(ctx, c.Param("id")); err == nil {
				oldPoster = existing.PosterURL
			}
		}

		event, err := svc.UpdateEvent(ctx, principal, c.Param("id"), upd)
		if err != nil {
			respondError(c, err)
			return
		}

		if oldPoster != "" && upd.PosterURL != nil && oldPoster != *upd.PosterURL {
			utils.DeleteFromCloudinary(oldPoster)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event updated successfully",
			"event":   event,
		})
	}
}

// ---------------- ARCHIVE ----------------
func ArchiveEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		if err := services.NewEventService(cfg.Store).ArchiveEvent(ctx, principal, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "event archived successfully"})
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		svc := services.NewEventService(cfg.Store)
		existing, err := svc.GetEvent(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if err := svc.DeleteEvent(ctx, principal, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}

		if existing.PosterURL != "" {
			utils.DeleteFromCloudinary(existing.PosterURL)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      existing.ID.Hex(),
		})
	}
}
