package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro/pkg/render"
)

var (
	renderOutput   string
	renderEditable bool
	pdfOutput      string
	pdfChrome      string
	pdfTimeout     time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the document as a standalone HTML page",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		out := os.Stdout
		if renderOutput != "" && renderOutput != "-" {
			f, err := os.Create(renderOutput)
			if err != nil {
				fatal("Failed to create output", err)
			}
			defer f.Close()
			out = f
		}

		opts := render.Options{Translator: ws.Translator(), Lang: lang, Editable: renderEditable}
		if err := render.HTML(out, ws.Document(), opts); err != nil {
			fatal("Failed to render", err)
		}
		if out != os.Stdout {
			fmt.Printf("Rendered to %s.\n", renderOutput)
		}
	},
}

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Print the document to PDF with headless Chrome",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		html, err := render.HTMLString(ws.Document(), render.Options{Translator: ws.Translator(), Lang: lang})
		if err != nil {
			fatal("Failed to render", err)
		}

		printer := &render.Printer{ChromePath: pdfChrome, Timeout: pdfTimeout}
		data, err := printer.PDF(cmd.Context(), html)
		if err != nil {
			fatal("Failed to print PDF", err)
		}
		if err := os.WriteFile(pdfOutput, data, 0644); err != nil {
			fatal("Failed to write PDF", err)
		}
		fmt.Printf("Wrote %s (%d bytes).\n", pdfOutput, len(data))
	},
}

func init() {
	rootCmd.AddCommand(renderCmd, pdfCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default stdout)")
	renderCmd.Flags().BoolVar(&renderEditable, "editable", false, "Mark fields contenteditable")
	pdfCmd.Flags().StringVarP(&pdfOutput, "output", "o", "cv.pdf", "Output file")
	pdfCmd.Flags().StringVar(&pdfChrome, "chrome", "", "Chrome executable (default $CHROME_PATH, then PATH)")
	pdfCmd.Flags().DurationVar(&pdfTimeout, "timeout", time.Minute, "Print timeout")
}
