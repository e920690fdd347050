// Package models holds plain data records shared by repositories and
// services on the server side.
package models

import "time"

// User is the account identity record used by the auth flows. PasswordHash
// is a bcrypt hash; the plaintext password never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	PhoneNumber  string
	DateOfBirth  *time.Time
	Gender       string
	Enabled      bool
	Locked       bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
