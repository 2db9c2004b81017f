package main

import (
	"os"

	"github.com/spf13/cobra"

	"soundlaw/internal/diag"
	"soundlaw/internal/diagfmt"
	"soundlaw/internal/source"
)

// printDiagnostics renders a bag to stderr: rustc-style snippets, color
// per --color когда stderr является терминалом. Info-only bags stay silent.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || (!bag.HasErrors() && !bag.HasWarnings()) {
		return
	}
	bag.Sort()
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))
	opts := diagfmt.PrettyOpts{
		Color:     useColor,
		Context:   2,
		ShowNotes: true,
	}
	diagfmt.Pretty(os.Stderr, bag, fs, opts)
}

// stdoutColor decides whether data output may use color.
func stdoutColor(cmd *cobra.Command) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
}
