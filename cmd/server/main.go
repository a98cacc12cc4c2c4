// Command server is the container entry point: it only serves.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/diamantrouge/maison/database/migrations"
	"github.com/diamantrouge/maison/pkg/app"
	"github.com/diamantrouge/maison/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Boot(ctx)
	if err != nil {
		logger.Error("boot failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Serve(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
