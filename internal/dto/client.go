package dto

import "time"

type CreateClientRequest struct {
	Name        string `json:"name" binding:"required,min=5,max=30"`
	Address     string `json:"address" binding:"required,min=10,max=100"`
	Description string `json:"description" binding:"required,min=20,max=200"`
	PhoneNumber string `json:"phone_number" binding:"required,min=10,max=20"`
}

// UpdateClientRequest leaves a field unchanged when it is empty
type UpdateClientRequest struct {
	Name        string `json:"name" binding:"omitempty,min=5,max=30"`
	Address     string `json:"address" binding:"omitempty,min=10,max=100"`
	Description string `json:"description" binding:"omitempty,min=20,max=200"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,min=10,max=20"`
}

type ClientResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ClientDetailResponse struct {
	ClientResponse
	Users []UserSummary `json:"users"`
}

type ClientSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
