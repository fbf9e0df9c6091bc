package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserCreate carries the fields for registering a user. Password is already
// hashed by the service layer.
type UserCreate struct {
	ID          uuid.UUID
	Username    string
	Email       string
	Password    string
	PhoneNumber string
	Role        string
}

// UserRead is a read-optimized view of a user row. Never carries the
// password hash.
type UserRead struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserUpdate carries mutable profile fields for admin edits.
type UserUpdate struct {
	PhoneNumber *string
	Role        *string
}
