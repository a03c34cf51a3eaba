package model

import "time"

// Account is a registered user. Usernames are unique within the store.
type Account struct {
	Username     string
	PasswordHash string // Opaque to everything except the credential hasher
	CreatedAt    time.Time
}
