package middleware

import (
	"net/http"
	"slices"

	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CORS allows the configured origins; "*" allows any
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case origin == "":
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case slices.Contains(allowedOrigins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		default:
			logger.GetLogger().Debug("Middleware: CORS origin not allowed",
				zap.String("origin", origin),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Location, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
