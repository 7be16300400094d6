// Package arbitercmder
package arbitercmder

import (
	"github.com/spf13/cobra"

	checkcmder "github.com/complydesk/arbiter/cmd/arbiter/check"
	configcmder "github.com/complydesk/arbiter/cmd/arbiter/config"
	ingestcmder "github.com/complydesk/arbiter/cmd/arbiter/ingest"
	servecmder "github.com/complydesk/arbiter/cmd/arbiter/serve"
	versioncmder "github.com/complydesk/arbiter/cmd/version"
)

const arbiterLongDesc string = `Arbiter answers compliance questions against your regulatory corpus.

Run services using:
  arbiter serve        Run the API server
  arbiter ingest       Ingest a document from the command line
  arbiter check        Run a one-off compliance check`

const arbiterShortDesc string = "Arbiter - Regulatory Compliance RAG"

func NewArbiterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arbiter",
		Short: arbiterShortDesc,
		Long:  arbiterLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml (default: current directory)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(checkcmder.NewCheckCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
