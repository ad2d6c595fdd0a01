package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firelens/firelens/internal/auth/login"
	"github.com/firelens/firelens/internal/auth/session"
	"github.com/firelens/firelens/internal/auth/store"
	"github.com/firelens/firelens/internal/browser"
)

var importFromCLI bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Add a Google account",
	Long: `Add a Google account, either interactively through the browser or by
importing the account the Firebase CLI already has cached.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().BoolVar(&importFromCLI, "import", false, "import the Firebase CLI's cached account instead of logging in")
}

func runLogin(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}

	if importFromCLI {
		rec, err := store.ImportExternalCLI(store.DefaultExternalCLIPath())
		if err != nil {
			return err
		}
		if err := session.AddAccount(st, rec); err != nil {
			return err
		}
		fmt.Printf("Imported account %s from the Firebase CLI\n", rec.Identity.Email)
		return nil
	}

	flow, err := login.Start(newOAuthClient(cfg), cfg.CallbackPort)
	if err != nil {
		return err
	}
	defer flow.Close()

	authURL := flow.AuthURL()
	if err := browser.Open(authURL); err != nil {
		fmt.Fprintf(os.Stderr, "Could not open browser: %v\n", err)
	}
	fmt.Printf("Waiting for sign-in; if the browser did not open, visit:\n%s\n\n", authURL)

	rec, err := flow.Wait(cmd.Context())
	if err != nil {
		return err
	}
	if err := session.AddAccount(st, rec); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", rec.Identity.Email)
	return nil
}
