package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/uuid"
)

// TeamIDKey is the Gin context key holding the scoped team ID.
const TeamIDKey = "teamID"

// TeamHeader carries the team every request operates on.
const TeamHeader = "X-Team-ID"

// TeamScope requires a well-formed X-Team-ID header and stores it in the
// context. Whether the team exists is checked by the services.
func TeamScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := strings.TrimSpace(c.GetHeader(TeamHeader))
		if teamID == "" {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, TeamHeader+" header is required"))
			c.Abort()
			return
		}
		if !uuid.IsValid(teamID) {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+TeamHeader+" header"))
			c.Abort()
			return
		}

		c.Set(TeamIDKey, teamID)
		c.Next()
	}
}
