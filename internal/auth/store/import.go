package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/firelens/firelens/internal/auth"
	"github.com/firelens/firelens/internal/auth/oauth"
)

// externalCLIConfig mirrors the Firebase CLI's configstore file. Only the
// cached user and tokens are read; everything else in the file is ignored.
type externalCLIConfig struct {
	User struct {
		Email string `json:"email"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string   `json:"access_token"`
		RefreshToken string   `json:"refresh_token"`
		IDToken      string   `json:"id_token"`
		TokenType    string   `json:"token_type"`
		Scopes       []string `json:"scopes"`
		// Milliseconds since epoch, as the CLI stores it.
		ExpiresAt int64 `json:"expires_at"`
	} `json:"tokens"`
}

// DefaultExternalCLIPath returns the Firebase CLI's configstore location.
func DefaultExternalCLIPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "configstore", "firebase-tools.json")
}

// ImportExternalCLI reads an account cached by the Firebase CLI and converts
// it into a record with origin external-cli. The identity comes from the
// cached ID token when present, falling back to the cached user email.
func ImportExternalCLI(path string) (auth.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return auth.Record{}, fmt.Errorf("reading external CLI config: %w", err)
	}

	var cfg externalCLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return auth.Record{}, fmt.Errorf("parsing external CLI config: %w", err)
	}
	if cfg.Tokens.RefreshToken == "" {
		return auth.Record{}, fmt.Errorf("external CLI config at %s holds no refresh token", path)
	}

	identity, err := oauth.DecodeIDToken(cfg.Tokens.IDToken)
	if err != nil {
		if cfg.User.Email == "" {
			return auth.Record{}, fmt.Errorf("external CLI config carries no usable identity: %w", err)
		}
		identity = auth.Identity{Email: cfg.User.Email}
	}

	return auth.Record{
		Identity: identity,
		Tokens: auth.TokenSet{
			AccessToken:  cfg.Tokens.AccessToken,
			RefreshToken: cfg.Tokens.RefreshToken,
			IDToken:      cfg.Tokens.IDToken,
			TokenType:    cfg.Tokens.TokenType,
			Scope:        strings.Join(cfg.Tokens.Scopes, " "),
			ExpiresAt:    time.UnixMilli(cfg.Tokens.ExpiresAt),
		},
		Origin: auth.OriginExternalCLI,
	}, nil
}
