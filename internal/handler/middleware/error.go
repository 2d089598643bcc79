package middleware

import (
	"log/slog"
	"net/http"

	"roomdesk/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the most recent public error recorded on the context.
// Handlers attach a httperr.Response via AbortWithError; anything that slips
// through without a written body becomes a plain 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		if resp, ok := lastPublicResponse(c); ok {
			c.JSON(resp.Status, resp)
			return
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
	}
}

// newest error wins
func lastPublicResponse(c *gin.Context) (httperr.Response, bool) {
	for i := len(c.Errors) - 1; i >= 0; i-- {
		ginErr := c.Errors[i]
		if !ginErr.IsType(gin.ErrorTypePublic) {
			continue
		}
		if resp, ok := ginErr.Meta.(httperr.Response); ok {
			return resp, true
		}
	}
	return httperr.Response{}, false
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered from panic", "error", r, "path", c.Request.URL.Path)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"
				c.JSON(http.StatusInternalServerError, resp)
				c.Abort()
			}
		}()
		c.Next()
	}
}
