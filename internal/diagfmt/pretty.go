package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"soundlaw/internal/diag"
	"soundlaw/internal/source"
)

var (
	sevErrorColor   = color.New(color.FgRed, color.Bold)
	sevWarningColor = color.New(color.FgYellow, color.Bold)
	sevInfoColor    = color.New(color.FgCyan, color.Bold)
	underlineColor  = color.New(color.FgRed, color.Bold)
	gutterColor     = color.New(color.FgBlue)
)

func init() {
	// Pretty сам решает по opts.Color; глобальный автодетект fatih/color
	// здесь только мешает (вывод через буферы в тестах и пайпы).
	sevErrorColor.EnableColor()
	sevWarningColor.EnableColor()
	sevInfoColor.EnableColor()
	underlineColor.EnableColor()
	gutterColor.EnableColor()
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printDiagnostic(w, d, fs, opts)
	}
}

func printDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	// Диагностики без привязки к файлу (каталог фонем строится из TOML,
	// а не из спанов) печатаются без пути, как и заметки ниже.
	if d.Primary == (source.Span{}) || fs == nil {
		fmt.Fprintf(w, "%s %s: %s\n",
			paint(opts, severityColor(d.Severity), d.Severity.String()),
			paint(opts, severityColor(d.Severity), d.Code.ID()),
			d.Message)
		if opts.ShowNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(w, "  note: %s\n", note.Msg)
			}
		}
		return
	}

	file := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	path := formatPath(file, fs, opts.PathMode)

	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		path, start.Line, start.Col,
		paint(opts, severityColor(d.Severity), d.Severity.String()),
		paint(opts, severityColor(d.Severity), d.Code.ID()),
		d.Message)

	if opts.Context >= 0 {
		printSnippet(w, file, start, end, opts)
	}

	if opts.ShowNotes {
		for _, note := range d.Notes {
			printNote(w, note, fs, opts)
		}
	}
}

// printSnippet печатает строку со span'ом, подчёркивание и Context строк
// вокруг. Колонки каретки считаются в экранных ячейках, не в байтах,
// иначе IPA-символы сдвигают подчёркивание.
func printSnippet(w io.Writer, file *source.File, start, end source.LineCol, opts PrettyOpts) {
	ctx := uint32(opts.Context)
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	if lineCount := uint32(len(file.LineIdx)) + 1; last > lineCount {
		last = lineCount
	}

	for lineNum := first; lineNum <= last; lineNum++ {
		text := file.GetLine(lineNum)
		printSourceLine(w, lineNum, text, opts)
		if lineNum == start.Line {
			printUnderline(w, text, start, end, opts)
		}
	}
}

func printSourceLine(w io.Writer, lineNum uint32, text string, opts PrettyOpts) {
	display := expandTabs(text)
	if opts.Width > 0 {
		display = runewidth.Truncate(display, int(opts.Width), "…")
	}
	fmt.Fprintf(w, "%s%s\n", paint(opts, gutterColor, fmt.Sprintf("%4d | ", lineNum)), display)
}

func printUnderline(w io.Writer, text string, start, end source.LineCol, opts PrettyOpts) {
	startCol := int(start.Col) - 1
	if startCol > len(text) {
		startCol = len(text)
	}
	endCol := len(text)
	if end.Line == start.Line && int(end.Col)-1 < endCol {
		endCol = int(end.Col) - 1
	}
	if endCol < startCol {
		endCol = startCol
	}

	pad := runewidth.StringWidth(expandTabs(text[:startCol]))
	width := runewidth.StringWidth(expandTabs(text[startCol:endCol]))
	if width < 1 {
		width = 1
	}
	if opts.Width > 0 && pad+width > int(opts.Width) {
		if pad >= int(opts.Width) {
			return // каретка за обрезанным краем, подчёркивать нечего
		}
		width = int(opts.Width) - pad
	}

	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	fmt.Fprintf(w, "%s%s%s\n",
		paint(opts, gutterColor, "     | "),
		strings.Repeat(" ", pad),
		paint(opts, underlineColor, marker))
}

func printNote(w io.Writer, note diag.Note, fs *source.FileSet, opts PrettyOpts) {
	if note.Span == (source.Span{}) {
		fmt.Fprintf(w, "  note: %s\n", note.Msg)
		return
	}
	file := fs.Get(note.Span.File)
	start, _ := fs.Resolve(note.Span)
	path := formatPath(file, fs, opts.PathMode)
	fmt.Fprintf(w, "  %s:%d:%d: note: %s\n", path, start.Line, start.Col, note.Msg)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return sevErrorColor
	case diag.SevWarning:
		return sevWarningColor
	default:
		return sevInfoColor
	}
}

func paint(opts PrettyOpts, c *color.Color, s string) string {
	if !opts.Color {
		return s
	}
	return c.Sprint(s)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
