package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// HistoryID is the userId under which a local account's statuses are stored.
func (u *User) HistoryID() string {
	return "local:" + u.Username
}

// Claims defines the structure of the JWT claims. Subject carries the history userId.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

type Credentials struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8"`
}
