package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/autogitd/autogitd/internal/ctlsock"
	"github.com/autogitd/autogitd/internal/supervisor"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show the status of the autogitd instance watching a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) > 0 {
			raw = args[0]
		}
		_, repoRoot, err := resolvePathArg(raw)
		if err != nil {
			return err
		}

		status, err := ctlsock.SendRequest(repoRoot, "status", 5*time.Second)
		if err != nil {
			// No control socket reachable means nothing is running here.
			status = supervisor.Status{RepoRoot: repoRoot}
		}
		printStatus(cmd, status)
		return nil
	},
}

func printStatus(cmd *cobra.Command, status supervisor.Status) {
	symbol, color := runningDisplay(status.Running, status.LastError)
	state := "stopped"
	if status.Running {
		state = "running"
	}
	cmd.Printf("%s%s%s %s\n", color, symbol, ansiReset, state)
	cmd.Printf("  repo:            %s\n", status.RepoRoot)
	if status.WatchPath != "" {
		cmd.Printf("  watch path:      %s\n", status.WatchPath)
	}
	cmd.Printf("  commits written: %d\n", status.CommitsWritten)
	if status.LastCommit != "" {
		cmd.Printf("  last commit:     %s\n", status.LastCommit)
	}
	if status.LastError != "" {
		cmd.Printf("  last error:      %s%s%s\n", ansiRed, status.LastError, ansiReset)
	}
}
