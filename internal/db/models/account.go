package models

import "time"

// Account is the durable form of one stored account: its decoded identity,
// its current token set and the origin it entered the store through.
// Email is the natural key; the UUID primary key only anchors gorm updates.
type Account struct {
	ID     string `gorm:"primaryKey"` // UUID
	Email  string `gorm:"uniqueIndex"`
	Origin string

	// Identity, as decoded from the ID token at login or import time.
	Issuer            string
	Audience          string
	Subject           string
	EmailVerified     bool
	IdentityIssuedAt  time.Time
	IdentityExpiresAt time.Time

	// Current token set. ExpiresAt is derived locally at token receipt.
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenType    string
	IDToken      string
	ExpiresAt    time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
