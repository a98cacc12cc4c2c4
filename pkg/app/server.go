package app

import (
	"context"
	"sync"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/internal/server"
	"github.com/diamantrouge/maison/pkg/database"
	"github.com/diamantrouge/maison/pkg/event"
	"github.com/diamantrouge/maison/pkg/grpc"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/queue"
	"github.com/diamantrouge/maison/pkg/schedule"
)

// Serve runs the HTTP API alongside the websocket hub, queue workers, the
// scheduler and, when GRPC_PORT is set, the gRPC health service. It
// returns once ctx is cancelled and everything has drained.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Hub.Run(ctx)
	}()

	a.RegisterSchedule()
	schedule.Start(ctx)
	waitQueue := queue.StartWorkers(ctx, config.QueueWorkers())

	if port := config.GRPCPort(); port != "" {
		srv, err := grpc.Start(port, database.Ping)
		if err != nil {
			return err
		}
		defer grpc.Stop(srv)
	}

	err := server.Run(ctx, config.AppPort(), a.Handler())
	cancel()

	waitQueue()
	event.Wait()
	wg.Wait()
	logger.Info("app: stopped")
	return err
}
