package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"soundlaw/internal/apply"
	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/driver"
	"soundlaw/internal/language"
	"soundlaw/internal/observ"
	"soundlaw/internal/source"
)

var applyCmd = &cobra.Command{
	Use:   "apply [flags] [words...]",
	Short: "Apply the language's sound changes to words",
	Long: `Apply compiles the language's rule file and runs every rule, in file
order, over a word list: positional words, a --words file, or the lexicon
named in soundlaw.toml. Changed words are printed as "before -> after".
With --rules a draft rule file is applied against the language's catalog
instead of the one named in the manifest.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("lang", "", "path to soundlaw.toml or its directory (default: discover upward)")
	applyCmd.Flags().String("rules", "", "apply this rule file instead of the manifest's (draft mode)")
	applyCmd.Flags().String("words", "", "file with one word per line (default: manifest lexicon)")
	applyCmd.Flags().String("out", "", "write the evolved word list to a file")
	applyCmd.Flags().Int("jobs", 0, "max parallel workers per rule (0=auto)")
	applyCmd.Flags().Bool("no-cache", false, "disable the compiled-rule cache")
	applyCmd.Flags().String("ui", "auto", "progress interface (auto|on|off)")
	applyCmd.Flags().Bool("changed-only", false, "print only words the rules changed")
}

func runApply(cmd *cobra.Command, args []string) error {
	langFlag, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	rulesPath, err := cmd.Flags().GetString("rules")
	if err != nil {
		return fmt.Errorf("failed to get rules flag: %w", err)
	}
	wordsPath, err := cmd.Flags().GetString("words")
	if err != nil {
		return fmt.Errorf("failed to get words flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	changedOnly, err := cmd.Flags().GetBool("changed-only")
	if err != nil {
		return fmt.Errorf("failed to get changed-only flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := loadManifest(langFlag)
	if err != nil {
		return err
	}

	// Список слов: позиционные аргументы, --words, иначе лексикон манифеста.
	var words []string
	switch {
	case len(args) > 0:
		words = args
	case wordsPath != "":
		words, err = language.LoadLexicon(source.NewFileSet(), wordsPath)
		if err != nil {
			return err
		}
	}

	var cache *driver.RuleCache
	if !noCache {
		cache, err = driver.OpenRuleCache()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: rule cache disabled: %v\n", err)
			cache = nil
		}
	}

	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
	}

	opts := driver.ApplyOptions{
		CompileOptions: driver.CompileOptions{
			MaxDiagnostics: maxDiagnostics,
			Cache:          cache,
			Timer:          timer,
		},
		Jobs: jobs,
	}

	// Черновой файл правил связывается с каталогом языка напрямую,
	// минуя [files] rules манифеста.
	var draftCat *catalog.Catalog
	if rulesPath != "" {
		if maxDiagnostics <= 0 {
			maxDiagnostics = driver.DefaultMaxDiagnostics
		}
		catBag := diag.NewBag(maxDiagnostics)
		cat, catErr := m.Catalog(diag.BagReporter{Bag: catBag})
		printDiagnostics(cmd, catBag, nil)
		if catErr != nil {
			return catErr
		}
		draftCat = cat
		opts.Abbreviations = m.Abbreviations()
		opts.BaseDir = m.Root
		if len(words) == 0 {
			words, err = manifestLexicon(m)
			if err != nil {
				return err
			}
		}
	}

	useTUI := shouldUseTUI(uiModeValue)
	ruleTexts := ruleLineTexts(m, rulesPath)

	runFn := func(ctx context.Context, events chan<- apply.Event, obs driver.PhaseObserver) (*driver.ApplyResult, error) {
		o := opts
		o.Events = events
		o.Observer = obs
		if rulesPath != "" {
			return driver.ApplyWords(ctx, rulesPath, words, draftCat, o)
		}
		return driver.ApplyLexicon(ctx, m, words, o)
	}

	var result *driver.ApplyResult
	if useTUI && len(ruleTexts) > 0 {
		result, err = runApplyWithUI(cmd.Context(), "apply "+m.Name(), ruleTexts, runFn)
	} else {
		result, err = runFn(cmd.Context(), nil, nil)
	}
	if result != nil && result.Compile != nil {
		printDiagnostics(cmd, result.Compile.Bag, result.Compile.FileSet)
	}
	if err != nil {
		return err
	}

	if outPath != "" {
		data := strings.Join(result.Words, "\n") + "\n"
		if err := os.WriteFile(outPath, []byte(data), 0o600); err != nil {
			return fmt.Errorf("failed to write %q: %w", outPath, err)
		}
	} else {
		for i, w := range result.Words {
			switch {
			case result.Changed[i]:
				fmt.Fprintf(os.Stdout, "%s -> %s\n", result.Input[i], w)
			case !changedOnly:
				fmt.Fprintln(os.Stdout, w)
			}
		}
	}

	if !quiet {
		changed := 0
		for _, c := range result.Changed {
			if c {
				changed++
			}
		}
		if outPath != "" {
			fmt.Fprintf(os.Stdout, "wrote %s: %d of %d words changed\n", outPath, changed, len(result.Words))
		} else {
			fmt.Fprintf(os.Stdout, "%d of %d words changed\n", changed, len(result.Words))
		}
	}
	if timer != nil {
		fmt.Fprint(os.Stdout, timer.Summary())
	}
	return nil
}

// ruleLineTexts reads the rule lines for the progress rows, preferring the
// override path when set. Best effort: сбой здесь не причина отказаться от
// запуска, конвейер сам сообщит.
func ruleLineTexts(m *language.Manifest, override string) []string {
	path := override
	if path == "" {
		var ok bool
		path, ok = m.RulesPath()
		if !ok {
			return nil
		}
	}
	_, lines, err := language.LoadRuleFile(source.NewFileSet(), path)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, ln.Text)
	}
	return out
}

// manifestLexicon loads the word list named in the manifest's [files]
// section.
func manifestLexicon(m *language.Manifest) ([]string, error) {
	path, ok := m.LexiconPath()
	if !ok {
		return nil, fmt.Errorf("%s: no [files] lexicon configured", m.Path)
	}
	return language.LoadLexicon(source.NewFileSet(), path)
}
