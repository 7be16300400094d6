// Package servecmder provides the serve command running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/complydesk/arbiter/api"
	"github.com/complydesk/arbiter/pkg/app"
	"github.com/complydesk/arbiter/pkg/config"
	"github.com/complydesk/arbiter/pkg/logger"
)

type serveCommander struct {
	listen    string
	uploadDir string
	configDir string
	debug     bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the Arbiter API server.

The server exposes document ingestion, similarity search, and compliance
check endpoints. Configuration comes from config.toml, ARBITER_*
environment variables, and CLI flags, in ascending precedence.`

const serveShortDesc string = "Run the Arbiter API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for API server to listen on (overrides config)")
	cmd.Flags().StringVar(&cmder.uploadDir, "upload-dir", "", "Directory for staging uploaded files (default: system temp)")

	return cmd
}

func (c *serveCommander) run() error {
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
	if c.listen != "" {
		cfg.Server.Listen = c.listen
	}

	a, err := app.New(context.Background(), cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.NewServer(api.Config{
		ListenAddr: cfg.Server.Listen,
		UploadDir:  c.uploadDir,
	}, a.Store, a.Vectors, a.Embedder, a.Authority, a.Checker, a.Pool, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
