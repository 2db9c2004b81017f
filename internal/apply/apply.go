// Package apply прогоняет скомпилированные правила по спискам слов.
//
// Одно слово можно преобразовать напрямую через rule.Rule.Apply; этот
// пакет покрывает массовый случай: лексиконы на тысячи слов, цепочки
// правил и прогресс для интерактивного интерфейса.
package apply

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"soundlaw/internal/rule"
)

// Stage says what part of a batch an Event reports on.
type Stage uint8

const (
	// StageWord fires after a single word has been rewritten.
	StageWord Stage = iota
	// StageRule fires after a whole rule finished its pass over the list.
	StageRule
)

// String возвращает имя стадии для логов и отладки.
func (s Stage) String() string {
	switch s {
	case StageWord:
		return "word"
	case StageRule:
		return "rule"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Event is one progress notification emitted during a batch run.
//
// For StageWord, Word/Total index into the word list and Text carries the
// input word. For StageRule, Rule/Total index into the rule list and Text
// carries the rule source text; Word is meaningless.
type Event struct {
	Stage   Stage
	Rule    int    // индекс правила в цепочке (0 вне Sequence)
	Word    int    // индекс слова в списке
	Total   int
	Text    string
	Changed bool
}

// Options tune batch application.
type Options struct {
	// Jobs caps the number of concurrent workers; <= 0 means GOMAXPROCS.
	Jobs int

	// Events receives progress notifications when non-nil. Sends block,
	// so the consumer must keep draining the channel. The channel is
	// never closed by this package.
	Events chan<- Event
}

// RuleStat is the per-rule outcome of a Sequence run.
type RuleStat struct {
	Rule    *rule.Rule
	Changed int // сколько слов изменило это правило
}

// Words applies one compiled rule to every word in the list.
//
// The returned slices are parallel to words: rewritten forms and a flag
// per word saying whether the rule changed it. The word order is
// preserved regardless of how the work was scheduled. Fails fast with
// rule.ErrNotCompiled when the rule has no catalog bound.
func Words(ctx context.Context, r *rule.Rule, words []string, opts Options) ([]string, []bool, error) {
	c, err := r.Compiled()
	if err != nil {
		return nil, nil, err
	}
	return batch(ctx, c, 0, words, opts)
}

// Sequence applies a rule chain in order, feeding each rule's output to
// the next. Слова проходят все правила: так моделируется историческая
// последовательность звуковых изменений.
//
// The returned words are the final stage; stats report how many words
// each rule changed. All rules are checked up front, so a half-applied
// batch is never returned.
func Sequence(ctx context.Context, rules []*rule.Rule, words []string, opts Options) ([]string, []RuleStat, error) {
	compiled := make([]*rule.Compiled, len(rules))
	for i, r := range rules {
		c, err := r.Compiled()
		if err != nil {
			return nil, nil, fmt.Errorf("rule %d (%s): %w", i+1, r, err)
		}
		compiled[i] = c
	}

	cur := slices.Clone(words)
	stats := make([]RuleStat, len(rules))
	for i, c := range compiled {
		next, flags, err := batch(ctx, c, i, cur, opts)
		if err != nil {
			return nil, nil, err
		}
		changed := 0
		for _, f := range flags {
			if f {
				changed++
			}
		}
		stats[i] = RuleStat{Rule: rules[i], Changed: changed}
		opts.emit(Event{
			Stage:   StageRule,
			Rule:    i,
			Total:   len(rules),
			Text:    rules[i].String(),
			Changed: changed > 0,
		})
		cur = next
	}
	return cur, stats, nil
}

// batch разбирает список слов пулом воркеров. Результаты пишутся по
// уникальным индексам, поэтому мьютекс не нужен; скомпилированное
// правило неизменяемо и безопасно для общего чтения.
func batch(ctx context.Context, c *rule.Compiled, ruleIdx int, words []string, opts Options) ([]string, []bool, error) {
	out := make([]string, len(words))
	flags := make([]bool, len(words))
	if len(words) == 0 {
		return out, flags, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(words)))

	for i, w := range words {
		g.Go(func(i int, w string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				res, changed := c.Apply(w)
				out[i] = res
				flags[i] = changed

				opts.emit(Event{
					Stage:   StageWord,
					Rule:    ruleIdx,
					Word:    i,
					Total:   len(words),
					Text:    w,
					Changed: changed,
				})
				return nil
			}
		}(i, w))
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return out, flags, nil
}

// emit отправляет событие, если получатель подключён.
func (o Options) emit(ev Event) {
	if o.Events == nil {
		return
	}
	o.Events <- ev
}
