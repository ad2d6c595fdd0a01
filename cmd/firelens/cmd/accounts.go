package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/firelens/firelens/internal/auth/session"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List stored accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}

		records, err := session.Accounts(st)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Email", "Origin", "Token Expires"})
		for _, rec := range records {
			expires := "expired"
			if rec.Tokens.Valid(time.Now()) {
				expires = rec.Tokens.ExpiresAt.Local().Format(time.RFC3339)
			}
			t.AppendRow(table.Row{rec.Identity.Email, rec.Origin, expires})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
