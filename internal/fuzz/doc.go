
// Package fuzztests houses Go fuzz harnesses that exercise the rule
// notation pipeline (source -> lexer -> parser -> bind). Its goal is to
// smoke test robustness and guard against panics or runaway expansion on
// arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер, парсер и компиляцию правила.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/rule, internal/catalog, internal/diag,
// internal/testkit.

package fuzztests
