package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Name         string          `gorm:"column:name;size:30;not null"`
	Description  string          `gorm:"column:description;type:text;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:decimal(6,2);not null"`
	SerialNumber string          `gorm:"column:serial_number;size:50;uniqueIndex;not null"`
}
