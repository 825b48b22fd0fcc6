package model

import "time"

// User is an identity record for the in-process identity collaborator. The
// ledger core only ever sees the opaque owner id (User.ID).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
