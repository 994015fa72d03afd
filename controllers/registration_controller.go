package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/sriram/festival-backend-go/config"
	middleware "github.com/sriram/festival-backend-go/middleware"
	"github.com/sriram/festival-backend-go/services"
)

// ---------------- SOLO ----------------
func RegisterSolo(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		res, err := services.NewRegistrationService(cfg.Store).RegisterSolo(ctx, c.Param("id"), principal.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// ---------------- TEAM CREATE ----------------
func CreateTeam(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			TeamName string `json:"teamName" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		res, err := services.NewRegistrationService(cfg.Store).CreateTeam(ctx, c.Param("id"), principal.ID, input.TeamName)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// ---------------- DIRECT ----------------
func RegisterDirect(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			EventID      string                      `json:"eventId" binding:"required"`
			TeamName     string                      `json:"teamName"`
			Participants []services.ParticipantInput `json:"participants" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		res, err := services.NewRegistrationService(cfg.Store).RegisterDirect(ctx, input.EventID, input.TeamName, principal.ID, input.Participants)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// ---------------- UPDATE SOLO ROW ----------------
func UpdateSoloRegistration(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		regID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration id"})
			return
		}

		var input services.SoloRegistrationUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		updated, err := services.NewRegistrationService(cfg.Store).UpdateSoloRegistration(ctx, principal.ID, regID, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "registration updated successfully",
			"registration": updated,
		})
	}
}

// ---------------- UPDATE TEAM MEMBER ----------------
func UpdateTeamMember(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		teamID, err := primitive.ObjectIDFromHex(c.Param("teamId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team id"})
			return
		}
		memberID, err := primitive.ObjectIDFromHex(c.Param("memberId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
			return
		}

		var input services.TeamMemberUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		team, err := services.NewRegistrationService(cfg.Store).UpdateTeamMember(ctx, principal.ID, teamID, memberID, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "team member updated successfully",
			"team":    team,
		})
	}
}

// ---------------- EVENT ROSTER ----------------
func EventRoster(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		event, entries, err := services.NewQueryService(cfg.Store).EventRoster(ctx, principal, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"event": gin.H{
				"id":         event.ID,
				"event_id":   event.EventID,
				"name":       event.Name,
				"event_type": event.EventType,
			},
			"registrations": entries,
			"count":         len(entries),
		})
	}
}

// ---------------- EVENT PARTICIPANTS ----------------
func EventParticipants(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		event, rows, err := services.NewQueryService(cfg.Store).EventParticipants(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"event": gin.H{
				"id":       event.ID,
				"event_id": event.EventID,
				"name":     event.Name,
			},
			"participants": rows,
			"count":        len(rows),
		})
	}
}

// ---------------- COLLEGE VIEW ----------------
func CollegeRegistrations(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		view, err := services.NewQueryService(cfg.Store).CollegeRegistrationsFor(ctx, principal.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// ---------------- ALL REGISTRATIONS ----------------
func AllRegistrations(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The service owns the long bulk-listing budget.
		rows, err := services.NewQueryService(cfg.Store).AllRegistrations(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"registrations": rows,
			"count":         len(rows),
		})
	}
}

// ---------------- ORPHAN SWEEP ----------------
func OrphanTeams(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		orphans, err := services.NewRegistrationService(cfg.Store).FindOrphanTeams(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orphanTeams": orphans,
			"count":       len(orphans),
		})
	}
}
