package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"composer/internal/client"
	"composer/internal/service"
)

// stopCmd marks a running playbook not ready.
var stopCmd = &cobra.Command{
	Use:   "stop <playbook-id>",
	Short: "Stop a running playbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.NewComposerClient()
		if err != nil {
			return fmt.Errorf("failed to create composer client: %w", err)
		}

		if err := service.NewPlaybookService(c).Stop(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "playbook %s stopped\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
