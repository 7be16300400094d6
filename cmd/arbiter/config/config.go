// Package configcmder provides the config command for managing persistent
// arbiter configuration.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent arbiter configuration.

Configuration is stored as config.toml and provides default values for
command flags. Environment variables (ARBITER_*) and CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen, storage.sqlite_path,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.model, embedding.dimensions, llm.model,
  chunking.chunk_size, retrieval.top_k, retrieval.confidence_threshold

Use subcommands to get, set, or list configuration values:
  arbiter config set <key> <value>    Set a configuration value
  arbiter config get <key>            Get a configuration value
  arbiter config list                 List all configuration values

Examples:
  arbiter config set vector_store.provider qdrant
  arbiter config set retrieval.top_k 10
  arbiter config get embedding.model
  arbiter config list`

const configShortDesc string = "Manage persistent arbiter configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
