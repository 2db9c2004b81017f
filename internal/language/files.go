package language

import (
	"fmt"
	"strings"

	"soundlaw/internal/source"
)

// RuleLine is one rule taken from a .law file, with the span of the rule
// text inside that file.
type RuleLine struct {
	Text string
	Span source.Span
}

// LoadRuleFile reads a .law file through fs and splits it into rule lines.
// Файл остаётся в FileSet, так что диагностики компиляции показывают
// настоящие строки и колонки.
func LoadRuleFile(fs *source.FileSet, path string) (*source.File, []RuleLine, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rule file %q: %w", path, err)
	}
	f := fs.Get(id)
	return f, RuleLines(f), nil
}

// RuleLines splits file content into rules: one rule per line, // comments
// and blank lines skipped. Spans cover exactly the trimmed rule text.
func RuleLines(f *source.File) []RuleLine {
	var out []RuleLine
	content := f.Content
	lineStart := 0
	for lineStart < len(content) {
		lineEnd := lineStart
		for lineEnd < len(content) && content[lineEnd] != '\n' {
			lineEnd++
		}
		line := string(content[lineStart:lineEnd])
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		left := strings.TrimLeft(line, " \t")
		lead := len(line) - len(left)
		text := strings.TrimRight(left, " \t\r")
		if text != "" {
			// FileSet уже гарантирует смещения в пределах uint32.
			start := uint32(lineStart + lead)
			out = append(out, RuleLine{
				Text: text,
				Span: source.Span{File: f.ID, Start: start, End: start + uint32(len(text))},
			})
		}
		lineStart = lineEnd + 1
	}
	return out
}

// LoadLexicon reads a word list through fs: one word per line, // comments
// and blank lines skipped.
func LoadLexicon(fs *source.FileSet, path string) ([]string, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %q: %w", path, err)
	}
	f := fs.Get(id)

	var words []string
	for _, line := range strings.Split(string(f.Content), "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}
	return words, nil
}
