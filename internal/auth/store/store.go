// Package store is the durable per-account credential store. Pure data
// access: no network calls, no token logic. Single-process single-writer is
// the supported model; last writer wins.
package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/firelens/firelens/internal/auth"
	"github.com/firelens/firelens/internal/db/models"
)

// Store persists account records in the SQLite database.
type Store struct {
	db *gorm.DB
}

// New returns a Store over an initialized database handle.
func New(database *gorm.DB) *Store {
	return &Store{db: database}
}

// List returns every stored account, ordered by email.
func (s *Store) List() ([]auth.Record, error) {
	var accounts []models.Account
	if err := s.db.Order("email").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	records := make([]auth.Record, 0, len(accounts))
	for _, acc := range accounts {
		records = append(records, toRecord(acc))
	}
	return records, nil
}

// Get looks up one account by email.
func (s *Store) Get(email string) (auth.Record, bool, error) {
	var acc models.Account
	err := s.db.Where("email = ?", email).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Record{}, false, nil
	}
	if err != nil {
		return auth.Record{}, false, fmt.Errorf("loading account %s: %w", email, err)
	}
	return toRecord(acc), true, nil
}

// Upsert stores a record, replacing any existing record with the same email.
// The row's UUID is preserved across replacements so it never appends a
// duplicate.
func (s *Store) Upsert(rec auth.Record) error {
	if rec.Identity.Email == "" {
		return fmt.Errorf("refusing to store an account without an email")
	}

	acc := fromRecord(rec)

	var existing models.Account
	err := s.db.Where("email = ?", rec.Identity.Email).First(&existing).Error
	switch {
	case err == nil:
		acc.ID = existing.ID
		acc.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		acc.ID = uuid.New().String()
	default:
		return fmt.Errorf("looking up account %s: %w", rec.Identity.Email, err)
	}

	if err := s.db.Save(&acc).Error; err != nil {
		return fmt.Errorf("saving account %s: %w", rec.Identity.Email, err)
	}
	return nil
}

// Remove deletes the account with the given email. Removing an unknown email
// is not an error.
func (s *Store) Remove(email string) error {
	if err := s.db.Where("email = ?", email).Delete(&models.Account{}).Error; err != nil {
		return fmt.Errorf("removing account %s: %w", email, err)
	}
	return nil
}

func toRecord(acc models.Account) auth.Record {
	return auth.Record{
		Identity: auth.Identity{
			Email:         acc.Email,
			EmailVerified: acc.EmailVerified,
			Issuer:        acc.Issuer,
			Audience:      acc.Audience,
			Subject:       acc.Subject,
			IssuedAt:      acc.IdentityIssuedAt,
			ExpiresAt:     acc.IdentityExpiresAt,
		},
		Tokens: auth.TokenSet{
			AccessToken:  acc.AccessToken,
			RefreshToken: acc.RefreshToken,
			Scope:        acc.Scope,
			TokenType:    acc.TokenType,
			IDToken:      acc.IDToken,
			ExpiresAt:    acc.ExpiresAt,
		},
		Origin: auth.Origin(acc.Origin),
	}
}

func fromRecord(rec auth.Record) models.Account {
	return models.Account{
		Email:             rec.Identity.Email,
		Origin:            string(rec.Origin),
		Issuer:            rec.Identity.Issuer,
		Audience:          rec.Identity.Audience,
		Subject:           rec.Identity.Subject,
		EmailVerified:     rec.Identity.EmailVerified,
		IdentityIssuedAt:  rec.Identity.IssuedAt,
		IdentityExpiresAt: rec.Identity.ExpiresAt,
		AccessToken:       rec.Tokens.AccessToken,
		RefreshToken:      rec.Tokens.RefreshToken,
		Scope:             rec.Tokens.Scope,
		TokenType:         rec.Tokens.TokenType,
		IDToken:           rec.Tokens.IDToken,
		ExpiresAt:         rec.Tokens.ExpiresAt,
	}
}
