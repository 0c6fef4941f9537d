package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro"
)

var (
	verbose   bool
	file      string
	lang      string
	adapter   string
	dsn       string
	versioned bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cvpro",
	Short: "A CV editor backed by a single JSON document",
	Long: `cvpro keeps your CV as one structured document.
Edit fields by dotted path, render it to HTML or PDF, serve an editable page,
and optionally version every save with Git.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&file, "file", "f", "", "Document file or directory (default: nearest cv.json, else the current directory)")
	flags.StringVar(&lang, "lang", "en", "Language of placeholders and labels")
	flags.StringVar(&adapter, "backend", "fs", "Storage backend (fs, memory, postgres)")
	flags.StringVar(&dsn, "dsn", "", "Postgres connection string")
	flags.BoolVar(&versioned, "git", false, "Commit every save to git (default: on inside a git repository)")
}

// openWorkspace opens the document selected by the persistent flags.
func openWorkspace(cmd *cobra.Command, extra ...cvpro.Option) *cvpro.Workspace {
	uri := file
	if uri == "" && adapter == "fs" {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		uri = cwd
		if root, err := cvpro.FindRoot(cwd); err == nil {
			uri = root
		}
	}

	opts := []cvpro.Option{
		cvpro.WithAdapter(adapter),
		cvpro.WithLang(lang),
		cvpro.WithLogger(slog.Default()),
	}
	if dsn != "" {
		opts = append(opts, cvpro.WithDSN(dsn))
	}
	if cmd.Flags().Changed("git") {
		opts = append(opts, cvpro.WithVersioning(versioned))
	}
	opts = append(opts, extra...)

	ws, err := cvpro.Open(cmd.Context(), uri, opts...)
	if err != nil {
		fatal("Failed to open document", err)
	}
	return ws
}

// closeWorkspace flushes pending saves.
func closeWorkspace(ws *cvpro.Workspace) {
	if err := ws.Close(context.Background()); err != nil {
		fatal("Failed to save document", err)
	}
}
