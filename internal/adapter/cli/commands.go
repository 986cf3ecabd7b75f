package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexusmerchants/orderforms-stripe/internal/app"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/pkg/messaging"
)

func newResolveCmd(open Opener) *cobra.Command {
	var expandDefault bool

	cmd := &cobra.Command{
		Use:   "resolve <user-id>",
		Short: "Resolve (and if needed create) the billing customer of a user",
		Long: `Runs the same resolution chain as the portal: cache, persisted link,
email lookup and finally customer creation.

Examples:
  portalctl resolve 42
  portalctl resolve 42 --expand-default-payment-method`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				var expand []string
				if expandDefault {
					expand = []string{provider.ExpandDefaultPaymentMethod}
				}

				customer, err := c.Resolver.Resolve(cmd.Context(), args[0], expand)
				if err != nil {
					return fmt.Errorf("failed to resolve customer: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), customer)
			})
		},
	}
	cmd.Flags().BoolVar(&expandDefault, "expand-default-payment-method", false, "include the default payment method")
	return cmd
}

func newCacheCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and purge cached billing snapshots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge <user-id>",
		Short: "Drop the customer snapshot and list caches of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				keys, err := c.Mutations.PurgeUser(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to purge cache: %w", err)
				}
				for _, key := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	})
	return cmd
}

func newLinkCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Inspect persisted user to customer links",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Show the customer id persisted for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				mapping, err := c.Resolver.Link(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to read link: %w", err)
				}
				if mapping == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "no customer linked to user %s\n", args[0])
					return nil
				}
				return printJSON(cmd.OutOrStdout(), mapping)
			})
		},
	})
	return cmd
}

func newEventsCmd(open Opener) *cobra.Command {
	var (
		channel string
		count   int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow billing events",
	}

	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print billing events as they are published",
		Long: `Subscribes to the billing event channel and prints one JSON event per line
until interrupted. Requires the redis cache driver.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, open, func(c *app.Container) error {
				if c.Redis == nil {
					return fmt.Errorf("events require the redis cache driver")
				}
				if channel == "" {
					channel = c.Config.Events.Channel
				}

				client := c.Messaging
				if client == nil {
					client = messaging.NewRedisClientWithClient(c.Redis)
				}

				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()

				messages, err := client.Subscribe(ctx, channel)
				if err != nil {
					return err
				}

				seen := 0
				for msg := range messages {
					fmt.Fprintln(cmd.OutOrStdout(), string(msg.Payload))
					seen++
					if count > 0 && seen >= count {
						return nil
					}
				}
				return nil
			})
		},
	}
	tail.Flags().StringVar(&channel, "channel", "", "channel to follow (default events.channel)")
	tail.Flags().IntVarP(&count, "count", "n", 0, "exit after n events")

	cmd.AddCommand(tail)
	return cmd
}
