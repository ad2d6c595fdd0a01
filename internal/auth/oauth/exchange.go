package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/firelens/firelens/internal/auth"
)

// ErrReloginRequired is returned when a refresh is requested for an account
// that holds no refresh token. Such a token set is terminal; only a new
// interactive login can replace it.
var ErrReloginRequired = errors.New("no refresh token available, please log in again")

// ExchangeError is a rejection from the token endpoint, carrying the
// provider's decoded error body.
type ExchangeError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token endpoint rejected the request: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("token endpoint rejected the request: %s", e.Code)
}

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	IDToken      string `json:"id_token"`
}

// ExchangeAuthCode trades an authorization code received on the login
// redirect for a full token set.
func (c *Client) ExchangeAuthCode(ctx context.Context, code, redirectURI string, origin auth.Origin) (auth.TokenSet, error) {
	clientID, clientSecret := c.clientCredentials(origin)
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	return c.postTokenForm(ctx, form)
}

// RefreshAccessToken mints a new access token from a refresh token. The
// response may omit refresh_token, scope and token_type; merging those over
// the previous set is the caller's job.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string, origin auth.Origin) (auth.TokenSet, error) {
	if refreshToken == "" {
		return auth.TokenSet{}, ErrReloginRequired
	}
	clientID, clientSecret := c.clientCredentials(origin)
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	return c.postTokenForm(ctx, form)
}

func (c *Client) postTokenForm(ctx context.Context, form url.Values) (auth.TokenSet, error) {
	issuedAt := c.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return auth.TokenSet{}, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return auth.TokenSet{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return auth.TokenSet{}, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return auth.TokenSet{}, decodeTokenError(resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return auth.TokenSet{}, fmt.Errorf("decoding token response: %w", err)
	}

	if tr.AccessToken == "" && tr.RefreshToken == "" {
		return auth.TokenSet{}, &ExchangeError{
			StatusCode:  resp.StatusCode,
			Code:        "invalid_credential",
			Description: "token endpoint returned neither an access token nor a refresh token",
		}
	}

	return auth.TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Scope:        tr.Scope,
		TokenType:    tr.TokenType,
		IDToken:      tr.IDToken,
		ExpiresAt:    issuedAt.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// decodeTokenError parses the provider's JSON error body; any non-JSON
// failure body is an opaque transport error.
func decodeTokenError(status int, body []byte) error {
	var pe struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &pe); err != nil || pe.Error == "" {
		return fmt.Errorf("token endpoint returned status %d: %s", status, strings.TrimSpace(string(body)))
	}
	return &ExchangeError{StatusCode: status, Code: pe.Error, Description: pe.ErrorDescription}
}
