package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soundlaw/internal/apply"
	"soundlaw/internal/diagfmt"
	"soundlaw/internal/driver"
	"soundlaw/internal/rule"
)

var expandCmd = &cobra.Command{
	Use:   "expand [flags] <rule>",
	Short: "Show the concrete changes a rule compiles to",
	Long: `Expand compiles one rule against the language's phoneme inventory and
prints the substitution table it produces: expanded targets, replacements,
environments and every before -> after window. --try runs the rule over
sample words and appends the outcomes.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().String("lang", "", "path to soundlaw.toml or its directory (default: discover upward)")
	expandCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	expandCmd.Flags().StringSlice("try", nil, "sample words to run the rule over")
}

func runExpand(cmd *cobra.Command, args []string) error {
	ruleText := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	langFlag, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	tryWords, err := cmd.Flags().GetStringSlice("try")
	if err != nil {
		return fmt.Errorf("failed to get try flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if len(tryWords) > 0 && format != "pretty" {
		return fmt.Errorf("--try only works with --format pretty")
	}

	m, err := loadManifest(langFlag)
	if err != nil {
		return err
	}

	result, err := driver.ExpandManifestRule(m, ruleText, driver.CompileOptions{
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return err
	}
	printDiagnostics(cmd, result.Bag, result.FileSet)
	if !result.Ok() {
		return fmt.Errorf("rule %q has errors", ruleText)
	}

	switch format {
	case "pretty":
		opts := diagfmt.PrettyOpts{Color: stdoutColor(cmd)}
		if err := diagfmt.FormatExpansionPretty(os.Stdout, []*rule.Rule{result.Rule}, opts); err != nil {
			return err
		}
		if len(tryWords) > 0 {
			return printTryWords(cmd, result.Rule, tryWords)
		}
		return nil
	case "json":
		return diagfmt.FormatExpansionJSON(os.Stdout, []*rule.Rule{result.Rule})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// printTryWords applies the rule to the sample words and prints each
// outcome, marking the ones the rule left alone.
func printTryWords(cmd *cobra.Command, r *rule.Rule, words []string) error {
	out, changed, err := apply.Words(cmd.Context(), r, words, apply.Options{})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "try:")
	for i, w := range words {
		if changed[i] {
			fmt.Fprintf(os.Stdout, "  %s -> %s\n", w, out[i])
		} else {
			fmt.Fprintf(os.Stdout, "  %s (unchanged)\n", w)
		}
	}
	return nil
}
