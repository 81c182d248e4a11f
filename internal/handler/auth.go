package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bilemo/internal/dto"
	"github.com/Payphone-Digital/bilemo/internal/service"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Login")

	var req dto.LoginRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	response, err := h.authService.Login(ctx, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "RefreshToken")

	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	response, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Logout")

	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(ctx, p.UserID); err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "User logged out").Log()
	c.Status(http.StatusNoContent)
}
