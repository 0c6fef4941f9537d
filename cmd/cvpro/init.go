package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a CV document with placeholder content",
	Long: `Create cv.json in the target directory (--file, default the current
directory). With --git the directory is also initialized as a git repository.`,
	Run: func(cmd *cobra.Command, args []string) {
		uri := file
		if uri == "" {
			uri = "."
		}

		opts := []cvpro.Option{
			cvpro.WithAutoInit(true),
			cvpro.WithLang(lang),
			cvpro.WithLogger(slog.Default()),
		}
		if cmd.Flags().Changed("git") {
			opts = append(opts, cvpro.WithVersioning(versioned))
		}

		ws, err := cvpro.Open(cmd.Context(), uri, opts...)
		if err != nil {
			fatal("Failed to initialize document", err)
		}
		if err := ws.SaveNow(cmd.Context()); err != nil {
			fatal("Failed to write document", err)
		}
		closeWorkspace(ws)

		fmt.Println("Initialized CV document in", uri)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
