package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gmcandra/mebelshop/app/jobs"
	"github.com/gmcandra/mebelshop/pkg/cache"
	"github.com/gmcandra/mebelshop/pkg/database"
	"github.com/gmcandra/mebelshop/pkg/queue"
)

var queueWorkersFlag int

// mebelshop queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue worker needs redis: %w", err)
		}
		queue.SetDriver(queue.NewRedisDriver(cache.Client()))
		queue.UseDB(database.DB)
		jobs.RegisterAll(database.DB)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
