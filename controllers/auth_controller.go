package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	config "github.com/sriram/festival-backend-go/config"
	middleware "github.com/sriram/festival-backend-go/middleware"
	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/store"
	utils "github.com/sriram/festival-backend-go/utils"
)

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=6"`
			Mobile   string `json:"mobile"`
			Degree   string `json:"degree"`
			Level    string `json:"level"`
			Dept     string `json:"dept"`
			Year     string `json:"year"`
			Gender   string `json:"gender"`
			College  string `json:"college"`
			City     string `json:"city"`
			State    string `json:"state"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		if _, err := cfg.Store.Users.FindByEmail(ctx, email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "user with this email already exists"})
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check existing users"})
			return
		}

		level := input.Level
		if level == "" && input.Degree != "" {
			level, _ = utils.InferLevel(input.Degree)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		now := time.Now()
		user := &models.User{
			Name:        input.Name,
			Email:       email,
			Password:    string(hash),
			Role:        models.RoleUser,
			Level:       level,
			Degree:      input.Degree,
			Dept:        input.Dept,
			Year:        input.Year,
			Gender:      input.Gender,
			College:     input.College,
			City:        input.City,
			State:       input.State,
			PhoneNumber: input.Mobile,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := cfg.Store.Users.Insert(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		token, err := middleware.IssueToken(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		user, err := cfg.Store.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		token, err := middleware.IssueToken(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

// ---------------- ME ----------------
func Me(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := reqCtx(writeTimeout)
		defer cancel()

		user, err := cfg.Store.Users.FindByID(ctx, principal.ID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
