package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetsim/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with defaults and overrides applied",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := config.Render(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
