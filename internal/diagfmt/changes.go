package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"soundlaw/internal/rule"
)

var changeAfterColor = color.New(color.FgGreen)

func init() {
	changeAfterColor.EnableColor()
}

// ChangeJSON представляет одну замену скомпилированного правила.
type ChangeJSON struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// RuleExpansionJSON представляет правило после развёртки против каталога:
// исходная запись, развёрнутые сегменты и итоговая карта замен.
type RuleExpansionJSON struct {
	Rule         string       `json:"rule"`
	Text         string       `json:"text,omitempty"` // после аббревиатур, если отличается
	Targets      []string     `json:"targets"`
	Replacements []string     `json:"replacements"`
	Environments []string     `json:"environments"`
	Changes      []ChangeJSON `json:"changes"`
	Inert        bool         `json:"inert,omitempty"`
}

// BuildRuleExpansion собирает JSON-структуру развёртки одного правила.
// Правило должно быть привязано к каталогу.
func BuildRuleExpansion(r *rule.Rule) (RuleExpansionJSON, error) {
	c, err := r.Compiled()
	if err != nil {
		return RuleExpansionJSON{}, err
	}

	out := RuleExpansionJSON{
		Rule:         r.String(),
		Targets:      c.Targets,
		Replacements: c.Replacements,
		Environments: c.Environments,
		Changes:      make([]ChangeJSON, 0, c.Changes.Len()),
		Inert:        c.Changes.Inert(),
	}
	if r.Text() != r.String() {
		out.Text = r.Text()
	}
	for _, ch := range c.Changes.Changes() {
		out.Changes = append(out.Changes, ChangeJSON{Before: ch.Before, After: ch.After})
	}
	return out, nil
}

// FormatExpansionPretty печатает развёртку правил: сегменты после
// подстановки классов и карту замен в порядке сборки.
func FormatExpansionPretty(w io.Writer, rules []*rule.Rule, opts PrettyOpts) error {
	for i, r := range rules {
		x, err := BuildRuleExpansion(r)
		if err != nil {
			return fmt.Errorf("rule %d (%s): %w", i+1, r.String(), err)
		}

		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "rule %d: %s\n", i+1, x.Rule)
		if x.Text != "" {
			fmt.Fprintf(w, "  expands to: %s\n", x.Text)
		}
		printSegment(w, "targets", x.Targets)
		printSegment(w, "replacements", x.Replacements)
		printSegment(w, "environments", x.Environments)

		fmt.Fprintf(w, "  changes (%d):\n", len(x.Changes))
		width := 0
		for _, ch := range x.Changes {
			if cw := runewidth.StringWidth(ch.Before); cw > width {
				width = cw
			}
		}
		for _, ch := range x.Changes {
			pad := strings.Repeat(" ", width-runewidth.StringWidth(ch.Before))
			after := ch.After
			if opts.Color {
				after = changeAfterColor.Sprint(after)
			}
			fmt.Fprintf(w, "    %s%s -> %s\n", ch.Before, pad, after)
		}
		if x.Inert {
			fmt.Fprintln(w, "  note: rule never changes its input")
		}
	}
	return nil
}

func printSegment(w io.Writer, name string, parts []string) {
	fmt.Fprintf(w, "  %s (%d): %s\n", name, len(parts), strings.Join(parts, " "))
}

// FormatExpansionJSON выводит развёртку правил массивом JSON-объектов.
func FormatExpansionJSON(w io.Writer, rules []*rule.Rule) error {
	output := make([]RuleExpansionJSON, 0, len(rules))
	for i, r := range rules {
		x, err := BuildRuleExpansion(r)
		if err != nil {
			return fmt.Errorf("rule %d (%s): %w", i+1, r.String(), err)
		}
		output = append(output, x)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
