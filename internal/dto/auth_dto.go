package dto

import "github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"

type RegisterRequest struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required"`
	LastName  string `json:"last_name" form:"last_name" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=8"`
	BirthDate string `json:"birth_date" form:"birth_date"`
	Avatar    string `json:"avatar" form:"avatar" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type RegisterResponse struct {
	Token   string         `json:"token"`
	Message string         `json:"message"`
	Author  *models.Author `json:"author"`
}

type UpdateAuthorRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1"`
	BirthDate *string `json:"birth_date"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

type AuthorListResponse struct {
	Authors    []models.Author `json:"authors"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	PostStore string `json:"post_store"`
}
