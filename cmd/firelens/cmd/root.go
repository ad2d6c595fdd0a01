package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firelens/firelens/internal/api"
	"github.com/firelens/firelens/internal/auth/oauth"
	"github.com/firelens/firelens/internal/auth/store"
	"github.com/firelens/firelens/internal/config"
	"github.com/firelens/firelens/internal/db"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "firelens",
	Short: "Multi-account Firebase credential and session tool",
	Long: `firelens manages Google accounts for Firebase tooling: interactive
browser login, durable token storage with transparent refresh, and
authenticated access to the Firebase management APIs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
}

func Execute() error {
	return rootCmd.Execute()
}

// openStore loads the config and opens the credential store behind it.
func openStore() (*store.Store, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, config.Config{}, err
	}

	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		return nil, config.Config{}, err
	}

	if cfg.APIBaseURL != "" {
		api.BaseURL = cfg.APIBaseURL
	}

	return store.New(database), cfg, nil
}

// newOAuthClient builds the token-endpoint client, applying config overrides.
func newOAuthClient(cfg config.Config) *oauth.Client {
	client := oauth.NewClient()
	if cfg.OAuth.ClientID != "" {
		client.ClientID = cfg.OAuth.ClientID
	}
	if cfg.OAuth.ClientSecret != "" {
		client.ClientSecret = cfg.OAuth.ClientSecret
	}
	return client
}
