package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"scarlet/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scarlet",
	Short: "Scarlet game-script compiler and toolchain",
	Long:  `Scarlet compiles and decompiles game script containers against layered instruction maps`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(decompileCmd)
	rootCmd.AddCommand(recompileCmd)
	rootCmd.AddCommand(mapfileCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	cobra.OnInitialize(applyColorMode)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode() {
	mode, _ := rootCmd.PersistentFlags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func maxDiagnostics() int {
	n, err := rootCmd.PersistentFlags().GetInt("max-diagnostics")
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

func quiet() bool {
	q, _ := rootCmd.PersistentFlags().GetBool("quiet")
	return q
}
