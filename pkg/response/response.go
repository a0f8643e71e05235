package response

import (
	"net/http"

	"anoa.com/betpoints/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, log *logrus.Logger, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError && log != nil {
		log.WithError(err).Error("internal error")
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
