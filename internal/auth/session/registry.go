package session

import (
	"fmt"
	"sync"

	"github.com/firelens/firelens/internal/auth"
)

// The process-wide session registry: at most one Session per account email,
// even under concurrent first access.
var (
	registryMu sync.Mutex
	registry   = make(map[string]*Session)
)

// For returns the session for the record's account, creating and memoizing
// it on first use.
func For(rec auth.Record, store Store, refresher Refresher) *Session {
	registryMu.Lock()
	defer registryMu.Unlock()

	if s, ok := registry[rec.Identity.Email]; ok {
		return s
	}
	s := New(rec, store, refresher)
	registry[rec.Identity.Email] = s
	return s
}

// ForEmail looks the account up in the store first, then memoizes as For.
func ForEmail(email string, store Store, refresher Refresher) (*Session, error) {
	registryMu.Lock()
	if s, ok := registry[email]; ok {
		registryMu.Unlock()
		return s, nil
	}
	registryMu.Unlock()

	rec, found, err := store.Get(email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no stored account for %s", email)
	}
	return For(rec, store, refresher), nil
}

// Accounts enumerates the stored account records.
func Accounts(store Store) ([]auth.Record, error) {
	return store.List()
}

// AddAccount stores a record, replacing any account with the same email.
// The memoized session for that email, if any, is dropped so the next For
// picks up the new tokens.
func AddAccount(store Store, rec auth.Record) error {
	if err := store.Upsert(rec); err != nil {
		return err
	}
	evict(rec.Identity.Email)
	return nil
}

// RemoveAccount deletes a stored account and its memoized session.
func RemoveAccount(store Store, email string) error {
	if err := store.Remove(email); err != nil {
		return err
	}
	evict(email)
	return nil
}

func evict(email string) {
	registryMu.Lock()
	delete(registry, email)
	registryMu.Unlock()
}
