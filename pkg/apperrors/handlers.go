package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleError writes err as a JSON response. Unknown error types become a
// generic 500 so internals never leak to clients.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !As(err, &appErr) {
		appErr = InternalError(err)
	}

	httpCode := appErr.HTTPCode
	if httpCode == 0 {
		httpCode = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(httpCode, gin.H{"error": appErr})
}
