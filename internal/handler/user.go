package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bilemo/internal/dto"
	"github.com/Payphone-Digital/bilemo/internal/service"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{userService: service}
}

func (h *UserHandler) GetAll(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetAllUsers")

	p, ok := principal(c)
	if !ok {
		return
	}

	page, err := h.userService.List(ctx, p, pageQuery(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.DebugWithContext(ctx, "Users fetched successfully").
		Int("page", page.Meta.CurrentPage).
		Int("returned_count", page.Meta.ItemsReturned).
		Log()

	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetUserByID")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(ctx, p, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "CreateUser")

	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	user, err := h.userService.CreateUser(ctx, p, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	created(c, user.ID, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdateUser")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(ctx, p, id, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdatePassword")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}
	var req dto.UpdatePasswordRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	if err := h.userService.UpdatePassword(ctx, p, id, &req); err != nil {
		respondError(ctx, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeleteUser")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(ctx, p, id); err != nil {
		respondError(ctx, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
