package apply_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"soundlaw/internal/apply"
	"soundlaw/internal/catalog"
	"soundlaw/internal/ipa"
	"soundlaw/internal/rule"
)

func bound(t *testing.T, text string, symbols ...string) *rule.Rule {
	t.Helper()
	ents := make([]catalog.Entry, 0, len(symbols))
	for _, s := range symbols {
		ents = append(ents, catalog.Symbol(s))
	}
	cat, err := catalog.New(ents, ipa.Default(), nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	r, err := rule.NewBound(text, cat, rule.Options{})
	if err != nil {
		t.Fatalf("rule %q: %v", text, err)
	}
	return r
}

func TestWordsBasic(t *testing.T) {
	r := bound(t, "p -> b / a_a", "a", "p", "b", "k")

	out, changed, err := apply.Words(context.Background(), r, []string{"apa", "pap", "kapa"}, apply.Options{})
	if err != nil {
		t.Fatalf("Words: %v", err)
	}

	wantOut := []string{"aba", "pap", "kaba"}
	wantChanged := []bool{true, false, true}
	for i := range wantOut {
		if out[i] != wantOut[i] || changed[i] != wantChanged[i] {
			t.Errorf("word %d: got %q (changed=%v), want %q (changed=%v)",
				i, out[i], changed[i], wantOut[i], wantChanged[i])
		}
	}
}

// Результаты должны лежать по исходным индексам независимо от того,
// как планировщик раскидал слова по воркерам.
func TestWordsPreservesOrder(t *testing.T) {
	r := bound(t, "p -> b / a_a", "a", "p", "b", "k")

	words := make([]string, 48)
	for i := range words {
		if i%2 == 0 {
			words[i] = "apa"
		} else {
			words[i] = "aka"
		}
	}

	out, changed, err := apply.Words(context.Background(), r, words, apply.Options{Jobs: 3})
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if len(out) != len(words) || len(changed) != len(words) {
		t.Fatalf("got %d results and %d flags, want %d", len(out), len(changed), len(words))
	}
	for i := range words {
		want, wantFlag := "aka", false
		if i%2 == 0 {
			want, wantFlag = "aba", true
		}
		if out[i] != want || changed[i] != wantFlag {
			t.Errorf("word %d: got %q (changed=%v), want %q (changed=%v)",
				i, out[i], changed[i], want, wantFlag)
		}
	}
}

func TestWordsUnboundRule(t *testing.T) {
	r, err := rule.New("p -> b / a_a", rule.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out, changed, err := apply.Words(context.Background(), r, []string{"apa"}, apply.Options{})
	if !errors.Is(err, rule.ErrNotCompiled) {
		t.Fatalf("err = %v, want ErrNotCompiled", err)
	}
	if out != nil || changed != nil {
		t.Errorf("got results %v / %v despite error", out, changed)
	}
}

func TestWordsEmptyList(t *testing.T) {
	r := bound(t, "p -> b / a_a", "a", "p", "b")

	out, changed, err := apply.Words(context.Background(), r, nil, apply.Options{})
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if len(out) != 0 || len(changed) != 0 {
		t.Errorf("got %v / %v, want empty results", out, changed)
	}
}

func TestWordsCancelledContext(t *testing.T) {
	r := bound(t, "p -> b / a_a", "a", "p", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := apply.Words(ctx, r, []string{"apa", "aka"}, apply.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestWordsEvents(t *testing.T) {
	r := bound(t, "p -> b / a_a", "a", "p", "b", "k")
	words := []string{"apa", "aka", "apa"}

	events := make(chan apply.Event, len(words))
	_, _, err := apply.Words(context.Background(), r, words, apply.Options{Events: events})
	if err != nil {
		t.Fatalf("Words: %v", err)
	}

	seen := make(map[int]apply.Event, len(words))
	for len(events) > 0 {
		ev := <-events
		if ev.Stage != apply.StageWord {
			t.Fatalf("unexpected stage %v", ev.Stage)
		}
		if _, dup := seen[ev.Word]; dup {
			t.Fatalf("word %d reported twice", ev.Word)
		}
		seen[ev.Word] = ev
	}
	if len(seen) != len(words) {
		t.Fatalf("got %d events, want %d", len(seen), len(words))
	}
	for i, w := range words {
		ev := seen[i]
		if ev.Total != len(words) || ev.Text != w {
			t.Errorf("event %d: got total=%d text=%q, want total=%d text=%q",
				i, ev.Total, ev.Text, len(words), w)
		}
		if wantChanged := w == "apa"; ev.Changed != wantChanged {
			t.Errorf("event %d: changed = %v, want %v", i, ev.Changed, wantChanged)
		}
	}
}

// Цепочка применяется по порядку: выход первого правила виден второму.
func TestSequencePipelineOrder(t *testing.T) {
	rules := []*rule.Rule{
		bound(t, "p -> b / a_a", "a", "p", "b", "w"),
		bound(t, "b -> w / a_a", "a", "p", "b", "w"),
	}

	out, stats, err := apply.Sequence(context.Background(), rules, []string{"apa"}, apply.Options{})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if out[0] != "awa" {
		t.Errorf("got %q, want %q", out[0], "awa")
	}
	if len(stats) != 2 || stats[0].Changed != 1 || stats[1].Changed != 1 {
		t.Errorf("stats = %+v, want one change per rule", stats)
	}
}

func TestSequenceStats(t *testing.T) {
	rules := []*rule.Rule{
		bound(t, "p -> b / a_a", "a", "p", "b", "k", "g"),
		bound(t, "k -> g / a_a", "a", "p", "b", "k", "g"),
	}
	words := []string{"apa", "aka", "pap"}

	out, stats, err := apply.Sequence(context.Background(), rules, words, apply.Options{})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}

	want := []string{"aba", "aga", "pap"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("word %d: got %q, want %q", i, out[i], want[i])
		}
	}
	for i, st := range stats {
		if st.Rule != rules[i] {
			t.Errorf("stats[%d].Rule points at the wrong rule", i)
		}
		if st.Changed != 1 {
			t.Errorf("stats[%d].Changed = %d, want 1", i, st.Changed)
		}
	}
	// Исходный список не должен меняться.
	if words[0] != "apa" {
		t.Errorf("input slice was mutated: %v", words)
	}
}

func TestSequenceUnboundRuleFailsFast(t *testing.T) {
	unbound, err := rule.New("b -> w / a_a", rule.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rules := []*rule.Rule{
		bound(t, "p -> b / a_a", "a", "p", "b"),
		unbound,
	}

	events := make(chan apply.Event, 8)
	out, stats, err := apply.Sequence(context.Background(), rules, []string{"apa"}, apply.Options{Events: events})
	if !errors.Is(err, rule.ErrNotCompiled) {
		t.Fatalf("err = %v, want ErrNotCompiled", err)
	}
	if !strings.Contains(err.Error(), "rule 2") {
		t.Errorf("err = %q, want the rule position named", err)
	}
	if out != nil || stats != nil {
		t.Errorf("got partial results %v / %v despite error", out, stats)
	}
	if len(events) != 0 {
		t.Errorf("%d events emitted before validation finished", len(events))
	}
}

func TestSequenceNoRules(t *testing.T) {
	out, stats, err := apply.Sequence(context.Background(), nil, []string{"apa"}, apply.Options{})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(out) != 1 || out[0] != "apa" || len(stats) != 0 {
		t.Errorf("got %v / %v, want untouched words and no stats", out, stats)
	}
}

func TestSequenceRuleEvents(t *testing.T) {
	rules := []*rule.Rule{
		bound(t, "p -> b / a_a", "a", "p", "b", "w"),
		bound(t, "b -> w / a_a", "a", "p", "b", "w"),
	}
	words := []string{"apa", "aka"}

	events := make(chan apply.Event, len(rules)*(len(words)+1))
	_, _, err := apply.Sequence(context.Background(), rules, words, apply.Options{Events: events})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}

	var ruleEvents []apply.Event
	for len(events) > 0 {
		ev := <-events
		if ev.Stage == apply.StageRule {
			ruleEvents = append(ruleEvents, ev)
		}
	}
	if len(ruleEvents) != len(rules) {
		t.Fatalf("got %d rule events, want %d", len(ruleEvents), len(rules))
	}
	for i, ev := range ruleEvents {
		if ev.Rule != i || ev.Total != len(rules) {
			t.Errorf("rule event %d: got rule=%d total=%d", i, ev.Rule, ev.Total)
		}
		if ev.Text != rules[i].String() {
			t.Errorf("rule event %d: text = %q, want %q", i, ev.Text, rules[i].String())
		}
		if !ev.Changed {
			t.Errorf("rule event %d: changed = false, want true", i)
		}
	}
}

func TestStageString(t *testing.T) {
	cases := []struct {
		stage apply.Stage
		want  string
	}{
		{apply.StageWord, "word"},
		{apply.StageRule, "rule"},
		{apply.Stage(9), "stage(9)"},
	}
	for _, tc := range cases {
		if got := tc.stage.String(); got != tc.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tc.stage, got, tc.want)
		}
	}
}
