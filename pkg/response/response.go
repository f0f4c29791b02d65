package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	appErrors "github.com/academyhq/academy-api/pkg/errors"
)

// The student and dashboard endpoints reproduce the exact JSON shapes of the
// legacy panel API, so most handlers build their success payloads inline and
// use these helpers only for the error side of the contract.

// Fail sends a workflow failure as {success:false, message, error}.
func Fail(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   Message(err),
	})
}

// Err sends a bare {error} payload, the legacy shape of lookup failures.
func Err(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": Message(err)})
}

// Error maps a typed error onto its HTTP status with the structured envelope
// used by the non-legacy surfaces (auth, exports).
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, gin.H{"error": appErr})
}

// Message extracts the human-readable message, preferring the typed message
// over the wrapped cause chain.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *appErrors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
