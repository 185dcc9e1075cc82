package model

import "time"

type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SignIn is what the backend returns from /auth/login and /auth/google.
type SignIn struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
	Token    string `json:"token"`
}
