package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autogitd/autogitd/internal/config"
	"github.com/autogitd/autogitd/internal/supervisor"
)

var configSetFile string

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringVar(&configSetFile, "json", "", "Path to a JSON file with the new config (required)")
	_ = configSetCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or update a repository's .autogit.json",
}

var configGetCmd = &cobra.Command{
	Use:   "get <repo>",
	Short: "Print a repository's .autogit.json, creating it with defaults if missing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := supervisor.GetConfig(args[0])
		if err != nil {
			return err
		}
		return printConfigJSON(cmd, cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <repo>",
	Short: "Replace a repository's .autogit.json from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(configSetFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", configSetFile, err)
		}

		var cfg config.Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", configSetFile, err)
		}

		if errs := config.Validate(&cfg); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "Error: %s\n", e)
			}
			return fmt.Errorf("%d validation error(s)", len(errs))
		}

		if err := supervisor.SetConfig(args[0], &cfg); err != nil {
			return err
		}
		return printConfigJSON(cmd, &cfg)
	},
}

func printConfigJSON(cmd *cobra.Command, cfg *config.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
