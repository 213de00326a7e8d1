package contentline

import (
	"io"
	"unicode/utf8"
)

const (
	// DefaultWidth is the folding width recommended by RFC 5545 section 3.1.
	DefaultWidth = 75
	// CRLF is the line ending required on the wire.
	CRLF = "\r\n"
)

// Writer emits folded content lines.
type Writer struct {
	w       io.Writer
	Width   int
	NewLine string
}

// NewWriter returns a writer folding at DefaultWidth with CRLF line endings.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, Width: DefaultWidth, NewLine: CRLF}
}

// WriteLine writes cl folded to the configured width.
func (w *Writer) WriteLine(cl ContentLine) error {
	s, err := cl.Serialize()
	if err != nil {
		return err
	}
	for i, part := range Fold(s, w.Width) {
		if i > 0 {
			part = " " + part
		}
		if _, err := io.WriteString(w.w, part+w.NewLine); err != nil {
			return err
		}
	}
	return nil
}

// WriteContainer writes c and everything nested in it.
func (w *Writer) WriteContainer(c *Container) error {
	if err := w.WriteLine(ContentLine{Name: "BEGIN", Value: c.Name}); err != nil {
		return err
	}
	for _, it := range c.Items {
		var err error
		switch it := it.(type) {
		case ContentLine:
			err = w.WriteLine(it)
		case *Container:
			err = w.WriteContainer(it)
		}
		if err != nil {
			return err
		}
	}
	return w.WriteLine(ContentLine{Name: "END", Value: c.Name})
}

// Fold splits line into chunks so that the first is at most width octets and
// every following chunk, once prefixed with a space, is too. Multi-byte UTF-8
// sequences are never split. A width below 2 disables folding.
func Fold(line string, width int) []string {
	if width < 2 || len(line) <= width {
		return []string{line}
	}
	var r []string
	limit := width
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(line)
		}
		r = append(r, line[:cut])
		line = line[cut:]
		limit = width - 1
	}
	return append(r, line)
}
