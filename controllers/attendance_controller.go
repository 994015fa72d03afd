package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	config "github.com/sriram/festival-backend-go/config"
	middleware "github.com/sriram/festival-backend-go/middleware"
	"github.com/sriram/festival-backend-go/services"
)

// ---------------- LEGACY SOLO BATCH ----------------
func MarkEventAttendance(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Attendance []services.AttendanceEntry `json:"attendance" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		report, err := services.NewAttendanceService(cfg.Store, slog.Default()).
			MarkEventAttendance(ctx, principal, c.Param("id"), input.Attendance)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "attendance updated",
			"report":  report,
		})
	}
}

// ---------------- SINGLE PARTICIPANT ----------------
func MarkRegistrationAttendance(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			UserID    string `json:"userId" binding:"required"`
			IsPresent *bool  `json:"isPresent" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		err := services.NewAttendanceService(cfg.Store, slog.Default()).
			MarkRegistrationAttendance(ctx, principal, c.Param("id"), input.UserID, *input.IsPresent)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "attendance updated"})
	}
}

// ---------------- REGISTRATION-ROW BATCH ----------------
func MarkParticipantAttendance(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Attendance []services.AttendanceEntry `json:"attendance" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(readTimeout)
		defer cancel()

		report, err := services.NewAttendanceService(cfg.Store, slog.Default()).
			MarkParticipantAttendance(ctx, principal, c.Param("id"), input.Attendance)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "attendance updated",
			"report":  report,
		})
	}
}
