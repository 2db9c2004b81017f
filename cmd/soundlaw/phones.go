package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/driver"
)

var phonesCmd = &cobra.Command{
	Use:   "phones [flags]",
	Short: "List the language's phoneme inventory",
	Long: `Phones lists the phonemes of the language in label order: allophones,
romanization when set, and the descriptors common to every allophone.
--match filters by descriptors; prefix one with ! to exclude it.`,
	Args: cobra.NoArgs,
	RunE: runPhones,
}

func init() {
	phonesCmd.Flags().String("lang", "", "path to soundlaw.toml or its directory (default: discover upward)")
	phonesCmd.Flags().String("match", "", "comma-separated descriptors to filter by (e.g. voiced,plosive)")
	phonesCmd.Flags().Bool("any", false, "match phonemes carrying any of the descriptors")
	phonesCmd.Flags().Bool("all", false, "match phonemes carrying all of the descriptors (default)")
}

func runPhones(cmd *cobra.Command, _ []string) error {
	langFlag, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	match, err := cmd.Flags().GetString("match")
	if err != nil {
		return fmt.Errorf("failed to get match flag: %w", err)
	}
	anyFlag, err := cmd.Flags().GetBool("any")
	if err != nil {
		return fmt.Errorf("failed to get any flag: %w", err)
	}
	allFlag, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	if anyFlag && allFlag {
		return fmt.Errorf("--any and --all are mutually exclusive")
	}
	if match == "" && (anyFlag || allFlag) {
		return fmt.Errorf("--any/--all make sense only with --match")
	}

	m, err := loadManifest(langFlag)
	if err != nil {
		return err
	}

	if maxDiagnostics <= 0 {
		maxDiagnostics = driver.DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiagnostics)
	cat, err := m.Catalog(diag.BagReporter{Bag: bag})
	printDiagnostics(cmd, bag, nil)
	if err != nil {
		return err
	}

	phonemes := cat.Phonemes()
	if match != "" {
		tokens := splitMatchTokens(match)
		if len(tokens) == 0 {
			return fmt.Errorf("--match has no descriptors")
		}
		// all-режим: фонема несёт каждый дескриптор; any: хотя бы один.
		phonemes = cat.FindPhonemes(tokens, !anyFlag)
	}

	if !quiet {
		if match != "" {
			fmt.Fprintf(os.Stdout, "%s: %d of %d phonemes match [%s]\n", m.Name(), len(phonemes), cat.Len(), match)
		} else {
			fmt.Fprintf(os.Stdout, "%s: %d phonemes\n", m.Name(), cat.Len())
		}
	}

	for _, pm := range phonemes {
		printPhoneme(pm)
	}
	return nil
}

func printPhoneme(pm catalog.Phoneme) {
	label := "/" + pm.Label + "/"
	if pm.Romanization != "" {
		label += " <" + pm.Romanization + ">"
	}

	symbols := make([]string, 0, len(pm.Allophones))
	for _, a := range pm.Allophones {
		symbols = append(symbols, a.Symbol)
	}

	fmt.Fprintf(os.Stdout, "%-14s %-12s %s\n",
		label, strings.Join(symbols, " "), strings.Join(pm.Common, " "))
}

func splitMatchTokens(match string) []string {
	parts := strings.Split(match, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
