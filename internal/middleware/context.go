package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextMiddleware middleware untuk context management: request id, client info and a deadline
func ContextMiddleware(module string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, module, c.FullPath())
		ctx = ctxutil.WithRequestID(ctx, requestID)

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(constants.GinKeyRequestID, requestID)
		c.Header(constants.HeaderXRequestID, requestID)

		logger.DebugWithContext(ctx, "Request started").
			Method(c.Request.Method).
			Path(c.Request.URL.Path).
			String("query", c.Request.URL.RawQuery).
			Log()

		c.Next()

		logger.DebugWithContext(ctx, "Request completed").
			Method(c.Request.Method).
			Path(c.Request.URL.Path).
			StatusCode(c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.JSON(http.StatusServiceUnavailable, constants.BuildErrorResponse(constants.MsgServiceUnavailable, "request timed out"))
		}
	}
}
