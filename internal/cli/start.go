package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autogitd/autogitd/internal/ctlsock"
	"github.com/autogitd/autogitd/internal/supervisor"
)

func init() {
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start [path]",
	Short: "Start watching a repository and blocking until stopped",
	Long: `Start locates the git repository enclosing [path] (default: the current
directory), begins committing changes to its private "autogit/tracking"
branch, and blocks until it receives SIGINT/SIGTERM or a matching
"autogitd stop" is run against the same repository.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) > 0 {
			raw = args[0]
		}

		watchPath, repoRoot, err := resolvePathArg(raw)
		if err != nil {
			return err
		}

		sup := supervisor.New()
		status, err := sup.Start(watchPath)
		if err != nil {
			return err
		}
		cmd.Printf("autogitd started for %s (watching %s)\n", status.RepoRoot, status.WatchPath)

		ln, err := ctlsock.Listen(repoRoot)
		if err != nil {
			sup.Stop()
			return fmt.Errorf("binding control socket: %w", err)
		}
		defer os.Remove(ctlsock.SocketPath(repoRoot))

		serveErr := make(chan error, 1)
		go func() { serveErr <- ctlsock.Serve(ln, sup) }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			cmd.Printf("\nreceived %s, shutting down...\n", sig)
			_ = ln.Close()
			sup.Stop()
		case <-serveErr:
			// Serve returned because a peer sent "stop"; sup.Stop() already
			// ran inside the handler before Serve returned.
		}

		cmd.Println("autogitd stopped")
		return nil
	},
}
