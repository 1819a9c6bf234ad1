package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studyplanner-api/internal/middleware"
	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// authorizeOwner admits the resource owner and admins. Without claims (auth disabled) everything is allowed.
func authorizeOwner(c *gin.Context, ownerID string) error {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role == models.RoleAdmin || claims.UserID == ownerID {
		return nil
	}
	return appErrors.ErrForbidden
}

// queryTime parses an RFC3339 query value, returning fallback when absent.
func queryTime(c *gin.Context, key string, fallback time.Time) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, key+" must be an RFC3339 timestamp")
	}
	return t.UTC(), nil
}
