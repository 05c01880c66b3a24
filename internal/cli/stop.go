package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/autogitd/autogitd/internal/ctlsock"
)

func init() {
	rootCmd.AddCommand(stopCmd)
}

var stopCmd = &cobra.Command{
	Use:   "stop [path]",
	Short: "Stop the autogitd instance watching a repository",
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

		status, err := ctlsock.SendRequest(repoRoot, "stop", 5*time.Second)
		if err != nil {
			return err
		}
		printStatus(cmd, status)
		return nil
	},
}
