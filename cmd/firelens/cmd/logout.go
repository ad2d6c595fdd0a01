package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firelens/firelens/internal/auth/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout <email>",
	Short: "Remove a stored account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		if err := session.RemoveAccount(st, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed account %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
