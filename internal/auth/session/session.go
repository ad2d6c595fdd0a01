// Package session brokers access tokens per account. A Session is the sole
// entry point other code uses to obtain a valid bearer token: it caches the
// current token set, refreshes it when expired and persists the result.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/firelens/firelens/internal/api"
	"github.com/firelens/firelens/internal/auth"
)

// Store is the slice of the credential store a session needs.
type Store interface {
	List() ([]auth.Record, error)
	Get(email string) (auth.Record, bool, error)
	Upsert(rec auth.Record) error
	Remove(email string) error
}

// Refresher mints fresh access tokens from a refresh token.
type Refresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string, origin auth.Origin) (auth.TokenSet, error)
}

// ProjectLister fetches the projects visible to the session's account.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]api.Project, error)
}

// ListProjectsOptions controls ListProjects; Refresh bypasses the cached
// listing.
type ListProjectsOptions struct {
	Refresh bool
}

// Session is the per-account token broker. Obtain instances through For so
// there is exactly one per account email.
type Session struct {
	email     string
	origin    auth.Origin
	store     Store
	refresher Refresher

	mu       sync.Mutex
	identity auth.Identity
	tokens   auth.TokenSet

	projMu   sync.Mutex
	lister   ProjectLister
	projects []api.Project

	// now is swapped in tests.
	now func() time.Time
}

// New builds a session around a stored record. Most callers want For, which
// memoizes by email.
func New(rec auth.Record, store Store, refresher Refresher) *Session {
	s := &Session{
		email:     rec.Identity.Email,
		origin:    rec.Origin,
		store:     store,
		refresher: refresher,
		identity:  rec.Identity,
		tokens:    rec.Tokens,
		now:       time.Now,
	}
	s.lister = api.NewProjectsClient(api.NewExecutor(s))
	return s
}

// Email is the account this session serves.
func (s *Session) Email() string {
	return s.email
}

// AccessToken returns a valid bearer token, refreshing first if the cached
// one has expired. While the cached token is valid no network call is made.
// Concurrent callers racing past an expired token coalesce behind the
// session mutex, so at most one refresh request is in flight per account.
// Refresh failures always propagate; a credential is never silently
// downgraded.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens.Valid(s.now()) {
		return s.tokens.AccessToken, nil
	}

	fresh, err := s.refresher.RefreshAccessToken(ctx, s.tokens.RefreshToken, s.origin)
	if err != nil {
		return "", fmt.Errorf("refreshing access token for %s: %w", s.email, err)
	}

	s.tokens = mergeTokens(s.tokens, fresh)

	rec := auth.Record{Identity: s.identity, Tokens: s.tokens, Origin: s.origin}
	if err := s.store.Upsert(rec); err != nil {
		// The fresh token is still usable; losing the write only costs a
		// refresh on the next process start.
		log.Printf("[Auth] failed to persist refreshed tokens for %s: %v", s.email, err)
	}

	return s.tokens.AccessToken, nil
}

// ListProjects returns the account's projects, reusing the last listing
// unless opts.Refresh is set. Failures are logged and degrade to an empty
// slice so callers always get something renderable; token refresh errors
// underneath are swallowed here too. Use AccessToken directly when a failure
// must surface.
func (s *Session) ListProjects(ctx context.Context, opts ListProjectsOptions) []api.Project {
	s.projMu.Lock()
	defer s.projMu.Unlock()

	if s.projects != nil && !opts.Refresh {
		return s.projects
	}

	projects, err := s.lister.ListProjects(ctx)
	if err != nil {
		log.Printf("[Auth] listing projects for %s: %v", s.email, err)
		return []api.Project{}
	}

	s.projects = projects
	return projects
}

// mergeTokens lays the refresh response over the cached set: new fields
// override, previous scope/token_type/refresh_token survive when absent from
// the response, and expiry always comes from the fresh set since the access
// token changed.
func mergeTokens(old, fresh auth.TokenSet) auth.TokenSet {
	merged := fresh
	if merged.RefreshToken == "" {
		merged.RefreshToken = old.RefreshToken
	}
	if merged.Scope == "" {
		merged.Scope = old.Scope
	}
	if merged.TokenType == "" {
		merged.TokenType = old.TokenType
	}
	if merged.IDToken == "" {
		merged.IDToken = old.IDToken
	}
	return merged
}
