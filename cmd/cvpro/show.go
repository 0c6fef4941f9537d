package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showYAML bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the whole document",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		out, err := ws.Export()
		if showYAML {
			out, err = ws.ExportYAML()
		}
		if err != nil {
			fatal("Failed to serialize document", err)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Print YAML instead of JSON")
}
