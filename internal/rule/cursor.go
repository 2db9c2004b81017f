package rule

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"soundlaw/internal/source"
)

// Cursor представляет собой позицию в фрагменте файла
type Cursor struct {
	File *source.File
	Off  uint32
	// Limit is the exclusive upper bound for Off. Constructors always set
	// it; the zero Cursor is immediately EOF.
	Limit uint32
}

// NewCursor creates a cursor over the whole file.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{
		File:  f,
		Off:   0,
		Limit: limit,
	}
}

// NewCursorRange creates a cursor over [start, end) of the file. Rule files
// lex one line at a time through this.
func NewCursorRange(f *source.File, start, end uint32) Cursor {
	return Cursor{
		File:  f,
		Off:   start,
		Limit: end,
	}
}

// EOF проверяет, достигнут ли конец фрагмента
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// Peek читает текущий байт, если есть, иначе возвращает 0
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

// Peek2 читает текущий и следующий байт, если есть, иначе возвращает 0, 0, false
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.Limit {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

// PeekRune decodes the rune at the cursor without consuming it.
func (c *Cursor) PeekRune() (r rune, size int) {
	if c.EOF() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRune(c.File.Content[c.Off:c.Limit])
}

// Bump перемещает курсор на один байт вперед и возвращает прочитанный байт
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// BumpRune consumes and returns the rune at the cursor.
func (c *Cursor) BumpRune() rune {
	r, size := c.PeekRune()
	c.Off += uint32(size)
	return r
}

// Mark это метка, что бы быстро получать Span читаемого фрагмента
type Mark uint32

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom получает Span для фрагмента, начиная с метки
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{
		File:  c.File.ID,
		Start: uint32(m),
		End:   c.Off,
	}
}

// Eat consumes the next byte if it matches the provided byte.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}
