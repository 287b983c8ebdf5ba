package models

import "time"

// user role
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is user entity
type User struct {
	ID           uint64
	Login        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// TokenPayload is authorization token payload
type TokenPayload struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether token belongs to administrator
func (p *TokenPayload) IsAdmin() bool {
	return p.Role == RoleAdmin
}
