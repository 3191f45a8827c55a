package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scarlet/internal/mapfile"
)

var mapfileCmd = &cobra.Command{
	Use:   "mapfile",
	Short: "Inspect and validate instruction maps",
}

func init() {
	mapfileCmd.AddCommand(mapfileCheckCmd)
	mapfileCmd.AddCommand(mapfileListCmd)
}

var mapfileCheckCmd = &cobra.Command{
	Use:   "check <mapfile>...",
	Short: "Parse mapfiles, merge them, and report every conflict",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := mapfile.NewLoader()
		for _, path := range args {
			if err := l.AddFile(path); err != nil {
				return err
			}
		}
		table, bag := l.Build()
		if printBag(cmd.ErrOrStderr(), bag) {
			return fmt.Errorf("mapfile check failed")
		}
		if !quiet() {
			f := table.Format()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s/%s\n", f.Game, f.Language)
		}
		return nil
	},
}

var mapfileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the embedded built-in instruction maps",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range mapfile.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
