package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/complydesk/arbiter/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Writes the value into config.toml, creating the file if needed. The key
must be one of the known dotted configuration keys.

Examples:
  arbiter config set vector_store.provider qdrant
  arbiter config set retrieval.confidence_threshold 0.85`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	path, err := config.WriteValue(configDir, key, value)
	if err != nil {
		return err
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, path)
	return nil
}
