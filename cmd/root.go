package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the composer application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "composer",
	Short: "Continuously compose playbooks of actors into running workloads",
	Long: `composer watches Playbook and Actor resources, resolves their
dependency closure, builds the images that are missing from the
registry, and keeps the resulting workloads deployed and up to date.`,
	// SilenceUsage prevents cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main
// to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "composer version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
