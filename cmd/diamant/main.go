// Command diamant runs and administers the Diamant Rouge service.
//
//	diamant serve
//	diamant migrate && diamant db:seed
//	diamant orders:export --status PENDING --out pending.xlsx
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diamantrouge/maison/config"
	_ "github.com/diamantrouge/maison/database/migrations"
	"github.com/diamantrouge/maison/pkg/database"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "diamant",
	Short:         "Diamant Rouge storefront and back-office service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueRetryCmd)
	rootCmd.AddCommand(scheduleRunCmd)
	rootCmd.AddCommand(exportOrdersCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// bootDB loads config and opens the database connection only.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}
