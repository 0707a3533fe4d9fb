package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/logger"
	"github.com/foreningshub/backend/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
// Clients never see the panic value.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.WithModule("http").Error("panic recovered",
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", r),
			)
			response.Error(c, appErrors.ErrInternalServer)
			c.Abort()
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Success(c, http.StatusNotFound, gin.H{"error": fmt.Sprintf("route %s not found", c.Request.URL.Path)})
}
