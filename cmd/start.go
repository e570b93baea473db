package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"composer/internal/client"
	"composer/internal/service"
)

// startCmd resumes a stopped playbook.
var startCmd = &cobra.Command{
	Use:   "start <playbook-id>",
	Short: "Start a stopped playbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.NewComposerClient()
		if err != nil {
			return fmt.Errorf("failed to create composer client: %w", err)
		}

		if err := service.NewPlaybookService(c).Start(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "playbook %s started\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
