package middleware

import (
	"strings"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	apperrors "github.com/Payphone-Digital/bilemo/internal/errors"
	"github.com/Payphone-Digital/bilemo/internal/service"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/gin-gonic/gin"
)

type JWTMiddleware struct {
	authService *service.AuthService
}

func NewJWTMiddleware(authService *service.AuthService) *JWTMiddleware {
	return &JWTMiddleware{authService: authService}
}

// RequireAuth validates the bearer token and stores the principal in the gin context
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithOperation(c.Request.Context(), "middleware", "RequireAuth")

		tokenString, ok := bearerToken(c.GetHeader(constants.HeaderAuthorization))
		if !ok {
			logger.WarnWithContext(ctx, "Missing or malformed Authorization header").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Log()
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		principal, err := m.authService.Authenticate(ctx, tokenString)
		if err != nil {
			logger.WarnWithContext(ctx, "Invalid or expired token").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Err(err).
				Log()
			abortWithError(c, err)
			return
		}

		c.Set(constants.GinKeyPrincipal, *principal)
		c.Set(constants.GinKeyUserID, principal.UserID)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), principal.UserID))

		c.Next()
	}
}

// RequireRole lets the request through when the principal holds any of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		for _, role := range roles {
			if principal.HasRole(role) {
				c.Next()
				return
			}
		}

		logger.WarnWithContext(c.Request.Context(), "Role check failed").
			Path(c.Request.URL.Path).
			Any("required_roles", roles).
			Any("roles", principal.Roles).
			Log()
		abortWithError(c, apperrors.ErrForbidden)
	}
}

// PrincipalFrom returns the principal set by RequireAuth
func PrincipalFrom(c *gin.Context) (dto.Principal, bool) {
	value, ok := c.Get(constants.GinKeyPrincipal)
	if !ok {
		return dto.Principal{}, false
	}
	principal, ok := value.(dto.Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
}
