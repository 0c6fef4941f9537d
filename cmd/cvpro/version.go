package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cvpro",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cvpro version %s\n", strings.TrimSpace(cvpro.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
