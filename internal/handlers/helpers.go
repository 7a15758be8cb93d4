package handlers

import (
	"errors"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
	"github.com/bratatouille-bot/cereal-api/internal/service"
)

// validSessionID accepts the ids device clients generate: short printable
// tokens without path separators or whitespace.
func validSessionID(sessionID string) bool {
	if !govalidator.StringLength(sessionID, "1", "64") {
		return false
	}
	return govalidator.Matches(sessionID, `^[A-Za-z0-9._-]+$`)
}

// respondError maps a service or provider error to its HTTP status and
// writes the error envelope.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case service.InvalidInputError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error()})
	case repository.NotFoundError:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *ai.UpstreamError:
		c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
	case *ai.BadResponseError:
		c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
	default:
		if errors.Is(err, ai.ErrEmptyTranscription) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
