package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
	resetYes     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the document as JSON or YAML",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		var out string
		var err error
		switch exportFormat {
		case "json":
			out, err = ws.Export()
		case "yaml":
			out, err = ws.ExportYAML()
		default:
			err = fmt.Errorf("unknown format %q", exportFormat)
		}
		if err != nil {
			fatal("Failed to export", err)
		}

		if exportOutput == "" || exportOutput == "-" {
			fmt.Println(out)
			return
		}
		if err := os.WriteFile(exportOutput, []byte(out+"\n"), 0644); err != nil {
			fatal("Failed to write export", err)
		}
		fmt.Printf("Exported to %s.\n", exportOutput)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace the document with a JSON or YAML file",
	Long: `Replace the document with the contents of a JSON or YAML file ("-" reads
stdin). Keys missing from the file are filled from the defaults.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fatal("Failed to read input", err)
		}

		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		if !ws.Import(cmd.Context(), string(data)) {
			fatal("Import rejected", fmt.Errorf("input is not a JSON or YAML mapping"))
		}
		fmt.Println("Document imported.")
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the document with placeholder content",
	Run: func(cmd *cobra.Command, args []string) {
		if !resetYes {
			fmt.Fprintln(os.Stderr, "Refusing to reset without --yes.")
			os.Exit(1)
		}
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		ws.Reset(cmd.Context())
		fmt.Println("Document reset.")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd, resetCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (json, yaml)")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm the reset")
}
