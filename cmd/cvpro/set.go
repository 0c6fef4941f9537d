package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro/pkg/core"
)

var setString bool

var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Write a value at a dotted path",
	Long: `Write a value at a dotted path. The value is read as JSON when it parses
(numbers, booleans, objects), otherwise as plain text. Use --string to force text.

A path ending in "date" sets the startDate/endDate pair of a record:

  cvpro set jobs.job-1.date "2019 - 2023"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		if !ws.Set(args[0], parseValue(args[1], setString)) {
			fmt.Fprintf(os.Stderr, "Path '%s' is not writable.\n", args[0])
			os.Exit(1)
		}
		fmt.Printf("Set '%s'.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().BoolVar(&setString, "string", false, "Store the value as plain text")
}

// parseValue reads raw as JSON, falling back to the raw text.
func parseValue(raw string, forceString bool) any {
	if forceString {
		return raw
	}
	if v, err := core.DecodeValue([]byte(raw)); err == nil {
		return v
	}
	return raw
}
