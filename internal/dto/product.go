package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name         string           `json:"name" binding:"required,min=5,max=30"`
	Description  string           `json:"description" binding:"required,min=20,max=200"`
	Price        *decimal.Decimal `json:"price" binding:"required"`
	SerialNumber string           `json:"serial_number" binding:"required,min=10,max=50"`
}

type UpdateProductRequest struct {
	Name         string           `json:"name" binding:"omitempty,min=5,max=30"`
	Description  string           `json:"description" binding:"omitempty,min=20,max=200"`
	Price        *decimal.Decimal `json:"price"`
	SerialNumber string           `json:"serial_number" binding:"omitempty,min=10,max=50"`
}

type ProductResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	SerialNumber string          `json:"serial_number"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
