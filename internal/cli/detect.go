package cli

import (
	"github.com/spf13/cobra"

	"github.com/autogitd/autogitd/internal/supervisor"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect <entry-path>",
	Short: "Report whether a path is inside a git repository, and where its root is",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := supervisor.DetectGitRepo(args[0])
		if !info.IsGitRepo {
			cmd.Println("not a git repository")
			return nil
		}
		cmd.Printf("repo root: %s\n", info.RepoRoot)
		cmd.Printf("relative path: %s\n", info.EntryRelativePath)
		return nil
	},
}
