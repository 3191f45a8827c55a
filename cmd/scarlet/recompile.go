package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"scarlet/internal/debuginfo"
	"scarlet/internal/diag"
	"scarlet/internal/driver"
)

var (
	recompileMapfiles   []string
	recompileNoBuiltins bool
	recompileSuffix     string
	recompileDebugInfo  bool
)

func init() {
	recompileCmd.Flags().StringArrayVarP(&recompileMapfiles, "mapfile", "m", nil, "extra mapfile layered over built-ins (repeatable)")
	recompileCmd.Flags().BoolVar(&recompileNoBuiltins, "no-builtin-maps", false, "ignore embedded instruction maps")
	recompileCmd.Flags().StringVar(&recompileSuffix, "suffix", ".out", "suffix appended to each output path")
	recompileCmd.Flags().BoolVar(&recompileDebugInfo, "debug-info", false, "write a .dbg side file next to each output")
}

var recompileCmd = &cobra.Command{
	Use:   "recompile <script>...",
	Short: "Round-trip script containers through the structurer and flattener",
	Long: `Recompile raises every body of each container into structured form and
flattens it back, re-encoding all arguments. Useful for normalizing
containers and for validating instruction maps against real scripts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := driver.ForEachScript(context.Background(), args,
			func(_ context.Context, path string, s *driver.ScriptFile) (*diag.Bag, error) {
				d, bag, err := newDriver(s, driver.Options{
					Mapfiles:          recompileMapfiles,
					NoBuiltinMapfiles: recompileNoBuiltins,
					EmitDebugInfo:     recompileDebugInfo,
					MaxDiagnostics:    maxDiagnostics(),
				})
				if err != nil {
					return nil, err
				}
				out, funcs, rbag := d.RecompileScript(s)
				bag.Merge(rbag)
				if bag.HasErrors() {
					return bag, nil
				}
				if err := driver.WriteScript(path+recompileSuffix, out); err != nil {
					return nil, err
				}
				if recompileDebugInfo {
					if err := debuginfo.Write(path+recompileSuffix+".dbg", s.Game, funcs); err != nil {
						return nil, err
					}
				}
				return bag, nil
			})
		if err != nil {
			return err
		}

		hadErrors := false
		for _, r := range results {
			if printBag(cmd.ErrOrStderr(), r.Bag) {
				hadErrors = true
			}
		}
		if hadErrors {
			return fmt.Errorf("recompilation finished with errors")
		}
		if !quiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "recompiled %d script(s)\n", len(results))
		}
		return nil
	},
}
