package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"soundlaw/internal/language"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new language project",
	Long: `Initialize a language project by creating a manifest (soundlaw.toml),
a rule file (changes.law) and a word list (words.txt). If [path|name] is
omitted, initializes the current directory. If a non-existing name is
provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit scaffolds a language project at the target path (or the current
// working directory when no argument or "." is provided).
//
// It resolves the target path, creates the directory if it does not exist,
// derives a language name from the directory basename (falling back to
// "new-language" for invalid names), and refuses to initialize if
// soundlaw.toml already exists. Existing rule and word files are kept.
func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		// treat as path or name relative to cwd
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine language name from directory basename
	name := filepath.Base(target)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "new-language"
	}

	// Create manifest file if not exists
	manifestPath := filepath.Join(target, language.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	created := []string{language.ManifestName}
	kept := []string{}
	for _, f := range []struct {
		name, content string
	}{
		{"changes.law", defaultRuleFile()},
		{"words.txt", defaultLexicon()},
	} {
		path := filepath.Join(target, f.name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(f.content), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.name, err)
			}
			created = append(created, f.name)
		} else {
			kept = append(kept, f.name)
		}
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized language project in %s\n", rel)
	for _, f := range created {
		fmt.Fprintf(os.Stdout, "  - %s\n", f)
	}
	for _, f := range kept {
		fmt.Fprintf(os.Stdout, "  - %s (existing)\n", f)
	}
	fmt.Fprintf(os.Stdout, "Try: soundlaw apply --lang %s\n", rel)
	return nil
}

// buildDefaultManifest returns a starter soundlaw.toml with a small
// five-vowel inventory. The phoneme set is deliberately plain so the demo
// rules in changes.law hold for it.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# Language project manifest
[language]
name = "%s"

# Один [[phoneme]] на фонему; без allophones фонема реализуется
# единственным аллофоном, равным symbol.
[[phoneme]]
symbol = "a"

[[phoneme]]
symbol = "e"

[[phoneme]]
symbol = "i"

[[phoneme]]
symbol = "o"

[[phoneme]]
symbol = "u"

[[phoneme]]
symbol = "p"

[[phoneme]]
symbol = "t"

[[phoneme]]
symbol = "k"

[[phoneme]]
symbol = "b"

[[phoneme]]
symbol = "d"

[[phoneme]]
symbol = "g"

[[phoneme]]
symbol = "s"

[[phoneme]]
symbol = "h"

[[phoneme]]
symbol = "m"

[[phoneme]]
symbol = "n"

[[phoneme]]
symbol = "l"

[[phoneme]]
symbol = "r"

[[phoneme]]
symbol = "w"

[[phoneme]]
symbol = "j"

[files]
rules = "changes.law"
lexicon = "words.txt"
`, name)
}

// defaultRuleFile returns the starter sound change file: intervocalic
// voicing and final h-loss, enough to see the engine do something.
func defaultRuleFile() string {
	return `// Sound changes, applied top to bottom.
// Syntax: target -> replacement / environment

// Voice plosives between vowels: pata -> pada.
{p,t,k} -> {b,d,g} / V_V

// Drop word-final h: hatih -> hadi (after voicing).
h -> 0 / _#
`
}

// defaultLexicon returns the starter word list.
func defaultLexicon() string {
	return `pata
keku
hatih
`
}
