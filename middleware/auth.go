package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/sriram/festival-backend-go/config"
	models "github.com/sriram/festival-backend-go/models"
	"github.com/sriram/festival-backend-go/services"
)

// Claims is the JWT payload issued at login. The principal fields are
// embedded so handlers never re-fetch the user per request.
type Claims struct {
	Role          string `json:"role"`
	IsSuperAdmin  bool   `json:"is_super_admin"`
	Club          string `json:"club,omitempty"`
	AssignedEvent string `json:"assigned_event,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs a 24h token for the user.
func IssueToken(cfg *config.Config, user *models.User) (string, error) {
	claims := Claims{
		Role:         user.Role,
		IsSuperAdmin: user.IsSuperAdmin,
		Club:         user.Club,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	if user.AssignedEvent != nil {
		claims.AssignedEvent = user.AssignedEvent.Hex()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// AuthMiddleware validates the bearer token and stores the identity fields
// in the gin context for downstream handlers.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Set("is_super_admin", claims.IsSuperAdmin)
		c.Set("club", claims.Club)
		c.Set("assigned_event", claims.AssignedEvent)
		c.Next()
	}
}

// AdminOnly rejects requests whose token does not carry the admin role. It
// must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom rebuilds the service-layer principal from the context fields
// AuthMiddleware stored. ok is false when the user id is unusable.
func PrincipalFrom(c *gin.Context) (services.Principal, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		return services.Principal{}, false
	}
	p := services.Principal{
		ID:           userID,
		Role:         c.GetString("role"),
		IsSuperAdmin: c.GetBool("is_super_admin"),
		Club:         c.GetString("club"),
	}
	if ref := c.GetString("assigned_event"); ref != "" {
		if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
			p.AssignedEvent = &oid
		}
	}
	return p, true
}
