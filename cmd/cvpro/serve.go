package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro"
	"github.com/aretw0/cvpro/pkg/render"
	"github.com/aretw0/cvpro/pkg/server"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editable CV page and the JSON API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws := openWorkspace(cmd, cvpro.WithWatch(serveWatch))
		defer closeWorkspace(ws)

		srv, err := server.New(server.Config{
			Store:   ws.Store,
			Logger:  slog.Default(),
			Lang:    lang,
			Printer: &render.Printer{},
		})
		if err != nil {
			fatal("Failed to create server", err)
		}

		slog.Info("open the editor", "url", "http://localhost"+serveAddr+"/cv")
		if err := srv.Run(ctx, serveAddr); err != nil {
			fatal("Server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":3000", "Listen address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload the document when it changes on disk")
}
