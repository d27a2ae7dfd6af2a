package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Azechum30/npresec-app/internal/cli"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.OpenDatabase).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
