package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"resumepdf/internal/cli"
	"resumepdf/internal/common"
)

func main() {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		common.NewPresenter().Error(err)
		stop()
		os.Exit(1)
	}
}
