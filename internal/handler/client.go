package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bilemo/internal/dto"
	"github.com/Payphone-Digital/bilemo/internal/service"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService *service.ClientService
}

func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) List(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListClients")

	page, err := h.clientService.List(ctx, pageQuery(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ClientHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetClientByID")

	id, ok := paramID(ctx, c)
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "CreateClient")

	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CreateClientRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	client, err := h.clientService.Create(ctx, p, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	created(c, client.ID, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdateClient")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	client, err := h.clientService.Update(ctx, p, id, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeleteClient")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(ctx, p, id); err != nil {
		respondError(ctx, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
