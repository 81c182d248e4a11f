package dto

import "time"

type CreateUserRequest struct {
	Username    string   `json:"username" binding:"required,min=5,max=30"`
	PhoneNumber string   `json:"phone_number" binding:"required,min=10,max=20"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=10,max=50"`
	ClientID    uint     `json:"client_id"`
	Roles       []string `json:"roles" binding:"omitempty,dive,oneof=ROLE_USER ROLE_ADMIN ROLE_SUPER_ADMIN"`
}

// UpdateUserRequest leaves a field unchanged when it is empty
type UpdateUserRequest struct {
	Username    string   `json:"username" binding:"omitempty,min=5,max=30"`
	PhoneNumber string   `json:"phone_number" binding:"omitempty,min=10,max=20"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Password    string   `json:"password" binding:"omitempty,min=10,max=50"`
	ClientID    uint     `json:"client_id"`
	Roles       []string `json:"roles" binding:"omitempty,dive,oneof=ROLE_USER ROLE_ADMIN ROLE_SUPER_ADMIN"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=10,max=50"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type UserResponse struct {
	ID          uint           `json:"id"`
	Username    string         `json:"username"`
	PhoneNumber string         `json:"phone_number"`
	Email       string         `json:"email"`
	Roles       []string       `json:"roles"`
	Client      *ClientSummary `json:"client,omitempty"`
	LastLogin   *time.Time     `json:"last_login,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UserSummary is the user shape embedded in client details
type UserSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}
