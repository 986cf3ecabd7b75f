package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexusmerchants/orderforms-stripe/internal/adapter/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(cli.DefaultOpener).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
