package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"soundlaw/internal/diagfmt"
	"soundlaw/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <rule|file.law>",
	Short: "Tokenize a rule or a rule file",
	Long: `Tokenize breaks rule notation into its constituent tokens. The argument
is either an inline rule ("p -> b / a_a") or a path to a .law file.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

// lineTokensJSON is the serialized form of one tokenized rule line.
type lineTokensJSON struct {
	Rule   string                `json:"rule"`
	Line   uint32                `json:"line"`
	Tokens []diagfmt.TokenOutput `json:"tokens"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	arg := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	// Файл или встроенное правило?
	st, statErr := os.Stat(arg)
	isFile := statErr == nil && !st.IsDir()
	if !isFile && strings.HasSuffix(arg, ".law") {
		// Опечатка в пути лексится как правило и даёт бессмысленные
		// диагностики; лучше честная ошибка.
		return fmt.Errorf("failed to stat rule file: %w", statErr)
	}

	if !isFile {
		result := driver.TokenizeRule(arg, maxDiagnostics)
		printDiagnostics(cmd, result.Bag, result.FileSet)

		switch format {
		case "pretty":
			return diagfmt.FormatTokensPretty(os.Stdout, result.Tokens, result.FileSet)
		case "json":
			return diagfmt.FormatTokensJSON(os.Stdout, result.Tokens)
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
	}

	result, err := driver.TokenizeFile(arg, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	printDiagnostics(cmd, result.Bag, result.FileSet)

	displayPath := result.File.FormatPath("auto", result.FileSet.BaseDir())

	switch format {
	case "pretty":
		for idx, lt := range result.Lines {
			start, _ := result.FileSet.Resolve(lt.Line.Span)
			if !quiet {
				fmt.Fprintf(os.Stdout, "== %s:%d ==\n", displayPath, start.Line)
			}
			if err := diagfmt.FormatTokensPretty(os.Stdout, lt.Tokens, result.FileSet); err != nil {
				return err
			}
			if !quiet && idx < len(result.Lines)-1 {
				fmt.Fprintln(os.Stdout)
			}
		}
		return nil
	case "json":
		output := make([]lineTokensJSON, 0, len(result.Lines))
		for _, lt := range result.Lines {
			start, _ := result.FileSet.Resolve(lt.Line.Span)
			output = append(output, lineTokensJSON{
				Rule:   lt.Line.Text,
				Line:   start.Line,
				Tokens: diagfmt.BuildTokens(lt.Tokens),
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
