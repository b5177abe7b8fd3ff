package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
)

// retryAfterSeconds is advertised on retryable conflicts. Lock waits are
// short, so an immediate retry usually succeeds.
const retryAfterSeconds = 1

// ErrorHandler returns a Gin middleware that renders the last error set on
// the context, unless a handler has already written a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError writes the JSON error envelope for err. AppErrors keep their
// code, message and status; anything else is logged and reported as a
// generic internal error so driver details never reach the client.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"request_id", c.GetString(requestIDKey),
			"team_id", c.GetString(TeamIDKey),
			"path", c.Request.URL.Path,
		)
	}

	if appErr.Retryable() {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
