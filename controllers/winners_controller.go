package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/sriram/festival-backend-go/config"
	middleware "github.com/sriram/festival-backend-go/middleware"
	"github.com/sriram/festival-backend-go/services"
)

// ---------------- SET WINNERS ----------------
func SetWinners(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}
		if !principal.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		var input struct {
			Winners []services.WinnerInput `json:"winners"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		res, err := services.NewWinnerService(cfg.Store, slog.Default()).SetWinners(ctx, c.Param("id"), input.Winners)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "winners updated successfully",
			"event":   res.Event,
			"winners": res.Winners,
		})
	}
}

// ---------------- GET WINNERS ----------------
func GetWinners(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		event, err := services.NewEventService(cfg.Store).GetEvent(ctx, c.Param("id"))
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
			"winners":          event.Winners,
			"winnersUpdatedAt": event.WinnersUpdatedAt,
		})
	}
}
