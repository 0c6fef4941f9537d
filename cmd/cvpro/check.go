package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro/pkg/query"
	"github.com/aretw0/cvpro/pkg/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the document against the CV schema",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		issues, err := validate.Document(ws.Document())
		if err != nil {
			fatal("Failed to validate", err)
		}
		if len(issues) == 0 {
			fmt.Println("Document is valid.")
			return
		}
		for _, issue := range issues {
			fmt.Fprintln(os.Stderr, issue.String())
		}
		fmt.Fprintf(os.Stderr, "%d issue(s) found.\n", len(issues))
		os.Exit(1)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Evaluate an expression against the document",
	Long: `Evaluate an expr-language expression. Top-level keys are variables:

  cvpro query 'len(skills)'
  cvpro query 'map(filter(skills, .level >= 80), .name)'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		result, err := query.Eval(args[0], ws.Document())
		if err != nil {
			fatal("Query failed", err)
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fatal("Failed to encode result", err)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, queryCmd)
}
