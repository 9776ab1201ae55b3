package user_models

import "time"

// User is created once through registration and immutable afterwards from
// the gateway's perspective.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequest is the registration payload forwarded upstream.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"required"`
}
