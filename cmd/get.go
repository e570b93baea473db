package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"composer/internal/client"
	composerv1alpha1 "composer/pkg/apis/composer/v1alpha1"
)

var getNamespace string

// getCmd lists composer resources in a table.
var getCmd = &cobra.Command{
	Use:   "get [playbooks|actors]",
	Short: "List composer resources",
	Long: `List composer resources from the cluster.

Examples:
  composer get playbooks
  composer get actors
  composer get actors -n composer-2f9c41d8`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"playbooks", "actors"},
	RunE:      runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	c, err := client.NewComposerClient()
	if err != nil {
		return fmt.Errorf("failed to create composer client: %w", err)
	}

	ctx := cmd.Context()

	switch args[0] {
	case "playbooks", "playbook", "pb":
		playbooks, err := c.ListPlaybooks(ctx)
		if err != nil {
			return err
		}
		renderPlaybooks(playbooks)
	case "actors", "actor":
		actors, err := c.ListActors(ctx, getNamespace)
		if err != nil {
			return err
		}
		renderActors(actors)
	default:
		return fmt.Errorf("unknown resource type %q (expected playbooks or actors)", args[0])
	}

	return nil
}

func renderPlaybooks(playbooks []composerv1alpha1.Playbook) {
	if len(playbooks) == 0 {
		fmt.Println(text.FgYellow.Sprint("No playbooks found"))
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"NAME", "TITLE", "NAMESPACE", "STATE", "READY", "ACTORS"})
	for _, pb := range playbooks {
		t.AppendRow(table.Row{
			pb.Name,
			pb.Spec.Title,
			pb.Spec.Namespace,
			pb.Status.State,
			pb.Status.Ready,
			len(pb.Spec.Actors),
		})
	}
	t.Render()
}

func renderActors(actors []composerv1alpha1.Actor) {
	if len(actors) == 0 {
		fmt.Println(text.FgYellow.Sprint("No actors found"))
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"NAMESPACE", "NAME", "IMAGE", "COMMIT", "LIVE", "STATE", "READY"})
	for _, actor := range actors {
		t.AppendRow(table.Row{
			actor.Namespace,
			actor.Name,
			actor.Spec.Image,
			shortCommit(actor.Spec.Commit),
			actor.Spec.Live,
			actor.Status.State,
			actor.Status.Ready,
		})
	}
	t.Render()
}

// newTable creates a table with the standard styling.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getNamespace, "namespace", "n", "", "Namespace to list actors from (all namespaces when empty)")
}
