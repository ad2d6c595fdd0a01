package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/firelens/firelens/internal/auth/session"
	"github.com/firelens/firelens/internal/auth/store"
	"github.com/firelens/firelens/internal/config"
)

var (
	projectsAccount string
	projectsRefresh bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Firebase projects for an account",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().StringVar(&projectsAccount, "account", "", "account email (default: the only stored account)")
	projectsCmd.Flags().BoolVar(&projectsRefresh, "refresh", false, "bypass the cached project listing")
}

func runProjects(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}

	sess, err := pickSession(st, cfg, projectsAccount)
	if err != nil {
		return err
	}

	projects := sess.ListProjects(cmd.Context(), session.ListProjectsOptions{Refresh: projectsRefresh})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Project ID", "Display Name", "Number", "State"})
	for _, p := range projects {
		t.AppendRow(table.Row{p.ProjectID, p.DisplayName, p.ProjectNumber, p.State})
	}
	t.Render()
	return nil
}

// pickSession resolves an --account value, defaulting to the single stored
// account.
func pickSession(st *store.Store, cfg config.Config, email string) (*session.Session, error) {
	refresher := newOAuthClient(cfg)

	if email != "" {
		return session.ForEmail(email, st, refresher)
	}

	records, err := session.Accounts(st)
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, fmt.Errorf("no stored accounts, run `firelens login` first")
	case 1:
		return session.For(records[0], st, refresher), nil
	default:
		return nil, fmt.Errorf("several accounts stored, pick one with --account")
	}
}
