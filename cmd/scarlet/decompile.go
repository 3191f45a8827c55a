package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scarlet/internal/codec"
	"scarlet/internal/diag"
	"scarlet/internal/driver"
	"scarlet/internal/ir"
)

var (
	decompileMapfiles    []string
	decompileNoBuiltins  bool
	decompileNoStructure bool
	decompileNoIntrin    bool
	decompileRawArgs     bool
	decompileOutput      string
)

func init() {
	decompileCmd.Flags().StringArrayVarP(&decompileMapfiles, "mapfile", "m", nil, "extra mapfile layered over built-ins (repeatable)")
	decompileCmd.Flags().BoolVar(&decompileNoBuiltins, "no-builtin-maps", false, "ignore embedded instruction maps")
	decompileCmd.Flags().BoolVar(&decompileNoStructure, "no-structure", false, "keep control flow as labels and gotos")
	decompileCmd.Flags().BoolVar(&decompileNoIntrin, "no-intrinsics", false, "keep every instruction a plain call")
	decompileCmd.Flags().BoolVar(&decompileRawArgs, "raw-args", false, "disable enum, name and register-alias lifting")
	decompileCmd.Flags().StringVarP(&decompileOutput, "output", "o", "", "write to file instead of stdout")
}

var decompileCmd = &cobra.Command{
	Use:   "decompile <script>...",
	Short: "Render script containers as structured source text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if decompileOutput != "" {
			f, err := os.Create(decompileOutput)
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()
			out = f
		}

		hadErrors := false
		for _, path := range args {
			s, err := driver.ReadScript(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			d, bag, err := newDriver(s, driver.Options{
				Mapfiles:          decompileMapfiles,
				NoBuiltinMapfiles: decompileNoBuiltins,
				NoStructure:       decompileNoStructure,
				NoIntrinsics:      decompileNoIntrin,
				Raise: codec.RaiseOptions{
					NoEnums:      decompileRawArgs,
					NoNames:      decompileRawArgs,
					NoRegAliases: decompileRawArgs,
				},
				MaxDiagnostics: maxDiagnostics(),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			blocks, dbag := d.DecompileScript(s)
			bag.Merge(dbag)

			for _, name := range s.SubNames() {
				fmt.Fprintf(out, "sub %s {\n", name)
				fmt.Fprint(out, indentBlock(ir.Print(blocks[name])))
				fmt.Fprintln(out, "}")
				fmt.Fprintln(out)
			}
			if printBag(cmd.ErrOrStderr(), bag) {
				hadErrors = true
			}
		}
		if hadErrors {
			return fmt.Errorf("decompilation finished with errors")
		}
		return nil
	},
}

// newDriver builds a driver for one container, taking game and language
// from its metadata.
func newDriver(s *driver.ScriptFile, opts driver.Options) (*driver.Driver, *diag.Bag, error) {
	opts.Game = s.Game
	opts.Language = s.Language
	return driver.New(opts)
}

func indentBlock(s string) string {
	out := make([]byte, 0, len(s)*2)
	atLineStart := true
	for i := 0; i < len(s); i++ {
		if atLineStart && s[i] != '\n' {
			out = append(out, ' ', ' ')
		}
		out = append(out, s[i])
		atLineStart = s[i] == '\n'
	}
	return string(out)
}
