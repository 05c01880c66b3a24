// Package cli implements the autogitd command-line binding: start, stop,
// status, config get/set, and git-repository detection, backed by
// internal/supervisor.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "autogitd",
	Short: "Record every saved change as commits on a private shadow branch",
	Long: `autogitd watches a working directory and records every saved change as
commits on a private "autogit/tracking" branch of the surrounding Git
repository. It never touches your branches, your staging area, or your
remotes — the shadow branch and its commits stay local until you act on
them yourself.`,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("autogitd %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
