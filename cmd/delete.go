package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"composer/internal/client"
	"composer/internal/service"
)

// deleteCmd deletes a playbook; the controller's finalizer tears down
// its namespace and build artifacts.
var deleteCmd = &cobra.Command{
	Use:   "delete <playbook-id>",
	Short: "Delete a playbook and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.NewComposerClient()
		if err != nil {
			return fmt.Errorf("failed to create composer client: %w", err)
		}

		if err := service.NewPlaybookService(c).Delete(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "playbook %s deleted\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
