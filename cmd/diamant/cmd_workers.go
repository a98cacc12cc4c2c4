package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diamantrouge/maison/pkg/app"
	"github.com/diamantrouge/maison/pkg/queue"
	"github.com/diamantrouge/maison/pkg/schedule"
)

var (
	queueWorkersFlag int
	scheduleTaskFlag string
	exportStatusFlag string
	exportOutFlag    string
)

var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		wait := queue.StartWorkers(ctx, max(queueWorkersFlag, 1))
		<-ctx.Done()
		wait()
		return nil
	},
}

var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry",
	Short: "Push every stored failed job back onto the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := queue.RetryFailed()
		fmt.Printf("%d failed job(s) queued again\n", n)
		return err
	},
}

// schedule:run either runs the scheduler until interrupted or, with --task,
// runs one task immediately and exits.
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		a.RegisterSchedule()

		if scheduleTaskFlag != "" {
			queue.SetSync(true)
			return schedule.RunNamed(ctx, scheduleTaskFlag)
		}

		for _, t := range schedule.List() {
			fmt.Println("  •", t)
		}
		schedule.Start(ctx)
		<-ctx.Done()
		return nil
	},
}

var exportOrdersCmd = &cobra.Command{
	Use:   "orders:export",
	Short: "Write the orders spreadsheet to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.ExportOrders(ctx, exportStatusFlag, exportOutFlag); err != nil {
			return err
		}
		fmt.Println("Orders exported to", exportOutFlag)
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 4, "number of concurrent workers")
	scheduleRunCmd.Flags().StringVar(&scheduleTaskFlag, "task", "", "run one named task now and exit")
	exportOrdersCmd.Flags().StringVar(&exportStatusFlag, "status", "", "only orders with this status")
	exportOrdersCmd.Flags().StringVarP(&exportOutFlag, "out", "o", "commandes.xlsx", "output file")
}
