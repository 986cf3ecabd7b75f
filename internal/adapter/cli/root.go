// Package cli implements portalctl, the operator tool for the customer portal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nexusmerchants/orderforms-stripe/internal/app"
	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	"github.com/nexusmerchants/orderforms-stripe/pkg/logger"
)

// Opener builds the application container a command runs against
type Opener func(ctx context.Context) (*app.Container, error)

// DefaultOpener loads the server's configuration and connects to the same backends
func DefaultOpener(ctx context.Context) (*app.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// stdout is reserved for command output
	cfg.Log.Output = "stderr"
	log, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return app.New(cfg, log, app.Options{})
}

// NewRootCmd assembles the portalctl command tree
func NewRootCmd(open Opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Operate the customer portal backend",
		Long: `portalctl inspects and repairs the state the customer portal keeps for a user:
the cached customer snapshot, the persisted customer link and the billing event stream.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv("CONFIG_PATH", configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/portal.yaml or $CONFIG_PATH)")

	root.AddCommand(newResolveCmd(open))
	root.AddCommand(newCacheCmd(open))
	root.AddCommand(newLinkCmd(open))
	root.AddCommand(newEventsCmd(open))
	return root
}

// withContainer opens the container for the duration of fn
func withContainer(cmd *cobra.Command, open Opener, fn func(c *app.Container) error) error {
	c, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()
	defer func() { _ = c.Logger.Sync() }()

	err = fn(c)
	if err != nil {
		c.Logger.Debug("command failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
