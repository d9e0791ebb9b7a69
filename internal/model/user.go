package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a teacher account. Every document belongs to exactly one user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for teacher authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// Profile holds the onboarding answers of a teacher. Its values pre-fill
// generation requests.
type Profile struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Level     string    `json:"jenjang"`
	Subject   string    `json:"mata_pelajaran"`
	Onboarded bool      `json:"onboarded"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateProfileRequest is the payload for saving onboarding answers.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" binding:"omitempty,min=1,max=255"`
	Level     *string `json:"jenjang" binding:"omitempty,oneof=SD SMP SMA SMK"`
	Subject   *string `json:"mata_pelajaran" binding:"omitempty,max=100"`
	Onboarded *bool   `json:"onboarded"`
}
