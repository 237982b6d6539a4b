package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academy-api/pkg/errors"
	"github.com/noah-isme/academy-api/pkg/response"
)

// PublicFlows answers 404 on the self-service routes when they are switched off.
func PublicFlows(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "formularios públicos deshabilitados"))
			c.Abort()
			return
		}
		c.Next()
	}
}
