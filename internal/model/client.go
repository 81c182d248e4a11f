package model

import "gorm.io/gorm"

type Client struct {
	gorm.Model
	Name        string `gorm:"column:name;size:30;not null"`
	Address     string `gorm:"column:address;size:100;not null"`
	Description string `gorm:"column:description;type:text;not null"`
	PhoneNumber string `gorm:"column:phone_number;size:20;not null"`
	Users       []User `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}
