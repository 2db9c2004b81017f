package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soundlaw/internal/diag"
	"soundlaw/internal/diagfmt"
	"soundlaw/internal/driver"
	"soundlaw/internal/language"
	"soundlaw/internal/observ"
	"soundlaw/internal/rule"
	"soundlaw/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.law]",
	Short: "Check a rule file for problems without applying it",
	Long: `Check compiles the language's rule file, or the given file against the
language's phoneme catalog, and prints every diagnostic: parse errors,
unknown descriptors, alignment conflicts, duplicate drops. Exits non-zero
when the file has errors.

With --syntax-only the file is parsed without a catalog, so drafts can be
checked before any language project exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("lang", "", "path to soundlaw.toml or its directory (default: discover upward)")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Bool("with-notes", false, "include notes in the output")
	checkCmd.Flags().Bool("full-path", false, "print absolute file paths")
	checkCmd.Flags().Bool("syntax-only", false, "parse the file without binding against a catalog")
}

func runCheck(cmd *cobra.Command, args []string) error {
	langFlag, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("full-path")
	if err != nil {
		return fmt.Errorf("failed to get full-path flag: %w", err)
	}
	syntaxOnly, err := cmd.Flags().GetBool("syntax-only")
	if err != nil {
		return fmt.Errorf("failed to get syntax-only flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var rulePath string
	if len(args) > 0 {
		rulePath = args[0]
	}

	var (
		bag *diag.Bag
		fs  *source.FileSet
	)
	if syntaxOnly {
		if rulePath == "" {
			return fmt.Errorf("--syntax-only needs an explicit rule file")
		}
		abbrevs, err := syntaxCheckAbbreviations(langFlag)
		if err != nil {
			return err
		}
		res, err := driver.ParseRuleFile(rulePath, abbrevs, maxDiagnostics)
		if err != nil {
			return err
		}
		res.Bag.Sort()
		bag, fs = res.Bag, res.FileSet
	} else {
		m, err := loadManifest(langFlag)
		if err != nil {
			return err
		}

		var timer *observ.Timer
		if timings {
			timer = observ.NewTimer()
		}

		// Кэш не используется: check всегда компилирует заново, чтобы
		// повторный прогон не глотал диагностики.
		res, err := driver.CheckRules(m, rulePath, driver.CompileOptions{
			MaxDiagnostics: maxDiagnostics,
			Timer:          timer,
		})
		if err != nil {
			return err
		}
		bag, fs = res.Bag, res.FileSet
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	// Диагностика и есть результат команды, поэтому stdout.
	switch format {
	case "pretty":
		opts := diagfmt.PrettyOpts{
			Color:     useColor,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		}
		diagfmt.Pretty(os.Stdout, bag, fs, opts)
	case "short":
		output := diag.FormatShortDiagnostics(bag.Items(), fs, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		if err := diagfmt.JSON(os.Stdout, bag, fs, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if bag.HasErrors() {
		// Подавляем usage: диагностика уже напечатана, нужен только код выхода.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

// syntaxCheckAbbreviations picks the abbreviation table for a syntax-only
// check: the manifest's when one is available, the built-ins otherwise.
// Явный --lang обязан сработать; молча падать на встроенные нельзя.
func syntaxCheckAbbreviations(langFlag string) (*rule.Abbreviations, error) {
	if langFlag != "" {
		m, err := loadManifest(langFlag)
		if err != nil {
			return nil, err
		}
		return m.Abbreviations(), nil
	}
	m, ok, err := language.Discover(".")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return m.Abbreviations(), nil
}
