package handler

import (
	"net/http"

	"github.com/Payphone-Digital/bilemo/internal/dto"
	"github.com/Payphone-Digital/bilemo/internal/service"
	ctxutil "github.com/Payphone-Digital/bilemo/pkg/context"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListProducts")

	page, err := h.productService.List(ctx, pageQuery(c))
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetProductByID")

	id, ok := paramID(ctx, c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "CreateProduct")

	p, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	product, err := h.productService.Create(ctx, p, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	created(c, product.ID, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdateProduct")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindJSON(ctx, c, &req) {
		return
	}

	product, err := h.productService.Update(ctx, p, id, &req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeleteProduct")

	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(ctx, c)
	if !ok {
		return
	}

	if err := h.productService.Delete(ctx, p, id); err != nil {
		respondError(ctx, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
