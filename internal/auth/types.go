// Package auth defines the account, identity and token types shared by the
// credential layer. It carries no behavior beyond validity checks; storage,
// exchange and session logic live in the subpackages.
package auth

import "time"

// Origin records how an account entered the store.
type Origin string

const (
	// OriginInteractive marks accounts obtained through our own login flow.
	OriginInteractive Origin = "interactive"
	// OriginExternalCLI marks accounts imported from the Firebase CLI's
	// cached configuration.
	OriginExternalCLI Origin = "external-cli"
)

// TokenSet holds the credentials returned by the OAuth token endpoint.
// ExpiresAt is derived locally at the moment the tokens were received, never
// taken from the server, and is recomputed whenever AccessToken changes.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenType    string
	IDToken      string
	ExpiresAt    time.Time
}

// Valid reports whether the access token can still be used at the given
// instant. A missing access token is always invalid, even if a stale expiry
// happens to lie in the future.
func (t TokenSet) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// Identity is the stable identity decoded from an ID token. Immutable once
// obtained from a login; accounts are equal when their emails are equal.
type Identity struct {
	Email         string
	EmailVerified bool
	Issuer        string
	Audience      string
	Subject       string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Record is one stored account: who it is, its current tokens, and where it
// came from. Updated in place on every refresh, removed only on explicit
// user request.
type Record struct {
	Identity Identity
	Tokens   TokenSet
	Origin   Origin
}
