package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/sriram/festival-backend-go/config"
	middleware "github.com/sriram/festival-backend-go/middleware"
	"github.com/sriram/festival-backend-go/services"
)

// ---------------- INVITE ----------------
func GenerateAdminInvite(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Name            string `json:"name" binding:"required"`
			Email           string `json:"email" binding:"required,email"`
			Club            string `json:"club" binding:"required"`
			AssignedEventID string `json:"assignedEventId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		res, err := services.NewAdminService(cfg.Store, slog.Default()).
			GenerateInvite(ctx, principal, input.Name, input.Email, input.Club, input.AssignedEventID, cfg.InviteBaseURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":   "invite sent",
			"email":     res.Email,
			"expiresAt": res.ExpiresAt,
		})
	}
}

// ---------------- ACCEPT INVITE ----------------
func AcceptAdminInvite(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Token    string `json:"token" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		user, err := services.NewAdminService(cfg.Store, slog.Default()).
			AcceptInvite(ctx, input.Token, input.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := middleware.IssueToken(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "invite accepted",
			"token":   token,
			"user":    user,
		})
	}
}

// ---------------- CREATE ADMIN ----------------
func CreateAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input services.CreateAdminInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		admin, err := services.NewAdminService(cfg.Store, slog.Default()).
			CreateAdmin(ctx, principal, input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "admin created",
			"admin":   admin,
		})
	}
}

// ---------------- CHANGE ADMIN PASSWORD ----------------
func ChangeAdminPassword(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		adminID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin id"})
			return
		}

		var input struct {
			NewPassword string `json:"newPassword" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		if err := services.NewAdminService(cfg.Store, slog.Default()).
			ChangeAdminPassword(ctx, principal, adminID, input.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
