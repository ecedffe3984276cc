package models

import "time"

// User represents a row in the PostgreSQL users table. The email doubles as
// the owner identifier of the user's todos.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never serialize
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login. Token carries the same
// session id as the cookie, for clients that cannot keep cookies.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
