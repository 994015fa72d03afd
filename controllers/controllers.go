package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	utils "github.com/sriram/festival-backend-go/utils"
)

// Per-request budgets: writes stay snappy, read projections get longer.
const (
	writeTimeout = 5 * time.Second
	readTimeout  = 10 * time.Second
)

func reqCtx(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// respondError maps a service error onto its HTTP status, hiding dependency
// details behind a generic message.
func respondError(c *gin.Context, err error) {
	c.JSON(utils.HTTPStatus(err), gin.H{"error": utils.PublicMessage(err)})
}
