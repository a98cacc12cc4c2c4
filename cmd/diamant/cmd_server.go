package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/diamantrouge/maison/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP API, workers and scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Serve(ctx)
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(nil)
		if err != nil {
			return err
		}
		return app.PrintRoutes(a.Kernel.Routes(), os.Stdout)
	},
}
