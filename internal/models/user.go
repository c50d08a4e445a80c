package models

import "time"

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           int       `json:"user_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
