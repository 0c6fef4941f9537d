package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the value at a dotted path",
	Long: `Print the value at a dotted path. Collection records are addressed by id:

  cvpro get personal.fullName
  cvpro get jobs.job-1.title`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		value, ok := ws.Get(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "Path '%s' not found.\n", args[0])
			os.Exit(1)
		}
		if s, isString := value.(string); isString {
			fmt.Println(s)
			return
		}
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			fatal("Failed to encode value", err)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
