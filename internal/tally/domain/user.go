package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // digest produced by cryptox.Hasher, never plaintext
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
