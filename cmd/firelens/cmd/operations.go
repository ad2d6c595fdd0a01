package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firelens/firelens/internal/api"
)

var operationsAccount string

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "Interact with long-running operations",
}

var operationsWaitCmd = &cobra.Command{
	Use:   "wait <operation-name>",
	Short: "Poll an operation until it completes",
	Long: `Poll a long-running operation (e.g. operations/abc123) until the server
reports it done. Polling is unbounded; interrupt to stop early.`,
	Args: cobra.ExactArgs(1),
	RunE: runOperationsWait,
}

func init() {
	rootCmd.AddCommand(operationsCmd)
	operationsCmd.AddCommand(operationsWaitCmd)
	operationsWaitCmd.Flags().StringVar(&operationsAccount, "account", "", "account email (default: the only stored account)")
}

func runOperationsWait(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}

	sess, err := pickSession(st, cfg, operationsAccount)
	if err != nil {
		return err
	}

	poller := api.NewPoller(api.NewExecutor(sess))
	op, err := poller.WaitOperation(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if op.Error != nil {
		return fmt.Errorf("operation %s failed: %s (code %d)", op.Name, op.Error.Message, op.Error.Code)
	}
	fmt.Printf("Operation %s completed\n", op.Name)
	if len(op.Response) > 0 {
		fmt.Println(string(op.Response))
	}
	return nil
}
