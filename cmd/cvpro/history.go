package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro/pkg/adapters/fs"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the git commits of the document",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		backend, ok := ws.Backend().(*fs.Backend)
		if !ok {
			fatal("History unavailable", fmt.Errorf("backend %q is not versioned", adapter))
		}
		entries, err := backend.History(historyLimit)
		if err != nil {
			fatal("Failed to read history", err)
		}
		if len(entries) == 0 {
			fmt.Println("No commits yet.")
			return
		}
		for _, entry := range entries {
			fmt.Println(entry)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of commits")
}
