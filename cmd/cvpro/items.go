package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/cvpro/pkg/core"
)

var addKind string

var addCmd = &cobra.Command{
	Use:   "add <collection> [json]",
	Short: "Append a record to a collection",
	Long: `Append a record to a collection. Without a JSON record, --kind adds a
placeholder record (skill, job, edu, cert, lang, hobby):

  cvpro add skills '{"name":"Go","level":80}'
  cvpro add jobs --kind job`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		collection := args[0]
		var record core.Node
		if len(args) == 2 {
			record = parseRecord(args[1])
			if _, ok := core.RecordID(record); !ok {
				record[core.IDField] = core.NewID(collection)
			}
		} else {
			kind := core.ItemKind(addKind)
			if kind == "" {
				kind = kindOf(collection)
			}
			target, placeholder, err := core.NewItem(kind, ws.Translator())
			if err != nil {
				fatal("Failed to build record", err)
			}
			if target != collection {
				fatal("Kind does not match collection", fmt.Errorf("%q records live in %q", kind, target))
			}
			record = placeholder
		}

		if !ws.AddItem(collection, record) {
			fatal("Failed to add record", fmt.Errorf("%w: %s", core.ErrNotCollection, collection))
		}
		id, _ := core.RecordID(record)
		fmt.Printf("Added '%s' to %s.\n", id, collection)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <collection> <id>",
	Short: "Remove a record by id",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		if !ws.RemoveItem(args[0], args[1]) {
			fmt.Fprintf(os.Stderr, "Record '%s' not found in %s.\n", args[1], args[0])
			os.Exit(1)
		}
		fmt.Printf("Removed '%s' from %s.\n", args[1], args[0])
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <collection> <id> <json>",
	Short: "Merge fields into a record",
	Long: `Merge the fields of a JSON object into a record. Fields not named are kept:

  cvpro update jobs job-1 '{"title":"CTO"}'`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		if !ws.UpdateItem(args[0], args[1], parseRecord(args[2])) {
			fmt.Fprintf(os.Stderr, "Record '%s' not found in %s.\n", args[1], args[0])
			os.Exit(1)
		}
		fmt.Printf("Updated '%s'.\n", args[1])
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <collection> <from> <to>",
	Short: "Move a record to another position",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			fatal("Invalid index", err)
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			fatal("Invalid index", err)
		}

		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		if !ws.MoveItem(args[0], from, to) {
			fmt.Fprintf(os.Stderr, "Cannot move %d to %d in %s.\n", from, to, args[0])
			os.Exit(1)
		}
		fmt.Printf("Moved %d to %d in %s.\n", from, to, args[0])
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <collection> <id>...",
	Short: "Rebuild a collection in the given id order",
	Long:  `Rebuild a collection in the given id order. Records not listed are dropped.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer closeWorkspace(ws)

		if !ws.ReorderItems(args[0], args[1:]) {
			fatal("Failed to reorder", fmt.Errorf("%w: %s", core.ErrNotCollection, args[0]))
		}
		fmt.Printf("Reordered %s.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(addCmd, removeCmd, updateCmd, moveCmd, reorderCmd)
	addCmd.Flags().StringVarP(&addKind, "kind", "k", "", "Placeholder kind (default: derived from the collection)")
}

func parseRecord(raw string) core.Node {
	value, err := core.DecodeValue([]byte(raw))
	if err != nil {
		fatal("Invalid record", err)
	}
	record, ok := value.(core.Node)
	if !ok {
		fatal("Invalid record", fmt.Errorf("want a JSON object, got %T", value))
	}
	return record
}

// kindOf finds the placeholder kind whose records live in collection.
func kindOf(collection string) core.ItemKind {
	for kind, target := range core.ItemKinds {
		if target == collection {
			return kind
		}
	}
	return ""
}
