package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New()
	rootCmd := cli.NewRootCmd(a)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		a.ReportError(err)
		stop()
		os.Exit(1)
	}
}
