package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserDTO struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
