package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/complydesk/arbiter/pkg/config"
)

const listLongDesc string = `List all configuration values.

Shows the effective value of every configuration key, resolved from
defaults, config.toml, and ARBITER_* environment variables.`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if target := v.ConfigFileUsed(); target != "" {
		fmt.Printf("Config file: %s\n\n", target)
	} else {
		fmt.Print("No config file found. Using defaults.\n\n")
	}

	for _, key := range config.ValidConfigKeys() {
		fmt.Printf("%s = %v\n", key, v.Get(key))
	}
	return nil
}
