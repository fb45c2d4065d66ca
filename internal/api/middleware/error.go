package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storage-bca/internal/api/models"
	"storage-bca/internal/logger"
)

// ErrorHandler recovers panics and answers with an INTERNAL_ERROR body.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		} else if err, ok := recovered.(error); ok {
			msg = fmt.Sprintf("internal error: %v", err)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
	})
}
