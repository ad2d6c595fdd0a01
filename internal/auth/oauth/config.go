// Package oauth talks to Google's OAuth endpoints: consent URL construction,
// authorization-code exchange and refresh-token exchange.
package oauth

import (
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/firelens/firelens/internal/auth"
)

// Published OAuth client of the Firebase CLI family. Not a secret in the OAuth
// sense: installed-application credentials ship with every copy of the tool.
// Default values are used if environment variables are not set.
const (
	DefaultClientID     = "563584335869-fgrhgmd47bqnekij5i8b5pr03ho849e6.apps.googleusercontent.com"
	DefaultClientSecret = "j9iVZfS8kkCEFUPaAeJV0sAi"
)

// Scopes requested at login. Listed verbatim; downstream API clients rely on
// the three platform scopes.
var Scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/cloudplatformprojects.readonly",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Client performs token-endpoint calls. The zero value is not usable; create
// one with NewClient and override Endpoint or HTTPClient for tests.
type Client struct {
	ClientID     string
	ClientSecret string
	Endpoint     oauth2.Endpoint
	HTTPClient   *http.Client

	// Clock is consulted to derive token expiry; nil means time.Now.
	Clock func() time.Time
}

// NewClient returns a Client against Google's endpoints using the published
// client credentials, overridable through FIRELENS_CLIENT_ID and
// FIRELENS_CLIENT_SECRET.
func NewClient() *Client {
	clientID := os.Getenv("FIRELENS_CLIENT_ID")
	if clientID == "" {
		clientID = DefaultClientID
	}

	clientSecret := os.Getenv("FIRELENS_CLIENT_SECRET")
	if clientSecret == "" {
		clientSecret = DefaultClientSecret
	}

	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleOAuth.Endpoint,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthCodeURL builds the consent-page URL for an interactive login attempt.
func (c *Client) AuthCodeURL(state, redirectURI string, origin auth.Origin) string {
	clientID, clientSecret := c.clientCredentials(origin)
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint:     c.Endpoint,
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// clientCredentials selects the OAuth client for an account origin. Every
// known origin shares the published client today; the indirection exists so a
// future origin can carry its own credentials without touching call sites.
func (c *Client) clientCredentials(origin auth.Origin) (string, string) {
	return c.ClientID, c.ClientSecret
}

func (c *Client) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
