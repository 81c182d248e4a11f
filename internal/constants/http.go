package constants

// HTTP Header Names
const (
	HeaderAuthorization  = "Authorization"
	HeaderLocation       = "Location"
	HeaderXRequestID     = "X-Request-ID"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderXRealIP        = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"
)

// Common HTTP Error Messages
const (
	MsgBadRequest         = "Invalid request"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgTooManyRequests    = "Too many requests"
	MsgInvalidID          = "Invalid ID format"
)
