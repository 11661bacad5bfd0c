package auth

import "mathtutor/internal/domain"

type TeacherCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=255"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
	Role     domain.UserRole `json:"role" validate:"required"`
	// Code is the emailed verification code; required for TEACHER.
	Code string `json:"code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AvatarRequest struct {
	AvatarURL string `json:"avatar_url" validate:"required,url"`
}

type LoginResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}
