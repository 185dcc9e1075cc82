package dto

import "github.com/BloggingApp/blog-gateway/internal/model"

// LoginRequest is not validated here; blank credentials get the same
// answer as wrong ones.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries the session token too, for clients that send it as
// a bearer token instead of the cookie.
type SessionResponse struct {
	Token   string        `json:"token,omitempty"`
	Session model.Session `json:"session"`
}
