// Package checkcmder provides the check command for one-off compliance
// checks.
package checkcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/pkg/app"
	"github.com/complydesk/arbiter/pkg/config"
	"github.com/complydesk/arbiter/pkg/logger"
)

type checkCommander struct {
	configDir string
	debug     bool
	logger    *zap.Logger
}

const checkLongDesc string = `Run a compliance check against the knowledge base.

The query is embedded, matched against ingested regulatory documents, and
analyzed by the configured language model. The verdict is printed as JSON.

Examples:
  arbiter check "Can a branch open an account without biometric verification?"`

const checkShortDesc string = "Run a one-off compliance check"

func NewCheckCmd() *cobra.Command {
	cmder := &checkCommander{}

	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(strings.Join(args, " "))
		},
	}

	return cmd
}

func (c *checkCommander) run(query string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	verdict := a.Checker.Check(ctx, query)

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding verdict: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
