package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro"
	cvlifecycle "github.com/aretw0/cvpro/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print document changes made by other programs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws := openWorkspace(cmd, cvpro.WithWatch(true))
		defer closeWorkspace(ws)

		source := cvlifecycle.NewSource(ws, cvlifecycle.DefaultBuffer)
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start watching", err)
		}

		fmt.Println("Watching for changes. Press Ctrl+C to stop.")
		for event := range source.Events() {
			fmt.Printf("%s %v\n", time.Now().Format(time.TimeOnly), event)
		}
		if dropped := source.Dropped(); dropped > 0 {
			fmt.Fprintf(os.Stderr, "%d event(s) dropped.\n", dropped)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
