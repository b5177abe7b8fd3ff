package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/middleware"
	"ledgerly/internal/uuid"
)

// ErrorResponse documents the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// getTeamID extracts the scoped team ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getTeamID(c *gin.Context) (string, error) {
	teamID := c.GetString(middleware.TeamIDKey)
	if teamID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return teamID, nil
}

// parsePathID parses a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseFlexibleTime accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseFlexibleTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// respondWithError writes a consistent JSON error response for err.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}
