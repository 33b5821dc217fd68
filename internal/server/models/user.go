// Package models holds the server-side domain types.
package models

import "time"

// User is one account. Locally registered users carry a PasswordHash;
// users provisioned from an OAuth identity have none.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash *string    `json:"-"`
	Picture      string     `json:"picture"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	Stores       []Store    `json:"stores"`
	Favorites    []Favorite `json:"favorites"`
	Orders       []Order    `json:"orders"`
}

// HasPassword reports whether the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
