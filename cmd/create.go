package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"composer/internal/client"
	"composer/internal/service"
	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
)

var (
	createTitle       string
	createDescription string
)

// createCmd creates a playbook from a lead actor specification.
var createCmd = &cobra.Command{
	Use:   "create <actor-spec.yaml>",
	Short: "Create a playbook from a lead actor specification",
	Long: `Creates a new playbook around the actor described in the given
YAML file. The playbook is named by a fresh UUID and owns a dedicated
namespace derived from the same UUID; the controller resolves the
actor's partners and expands the playbook from there.

Example:
  composer create ./actor.yaml --title "Voting App"`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read actor spec %s: %w", args[0], err)
	}

	var actor composerv1alpha1.ActorSpec
	if err := yaml.UnmarshalStrict(raw, &actor); err != nil {
		return fmt.Errorf("failed to parse actor spec %s: %w", args[0], err)
	}
	if actor.Name == "" {
		return fmt.Errorf("actor spec %s has no name", args[0])
	}

	c, err := client.NewComposerClient()
	if err != nil {
		return fmt.Errorf("failed to create composer client: %w", err)
	}

	title := createTitle
	if title == "" {
		title = actor.Name
	}

	id, err := service.NewPlaybookService(c).Create(cmd.Context(), service.CreateParams{
		Title:       title,
		Description: createDescription,
		Actor:       actor,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "playbook %s created\n", id)
	return nil
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createTitle, "title", "", "Playbook title (defaults to the actor name)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Playbook description")
}
