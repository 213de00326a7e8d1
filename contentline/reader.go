package contentline

import (
	"bufio"
	"io"
	"strings"

	"github.com/dimchansky/utfbom"
)

// Reader turns a byte stream into unfolded content lines. Bare CR, bare LF
// and CRLF all end a physical line, empty physical lines are skipped and a
// line starting with a space or tab continues the previous one. At most one
// physical line is buffered.
type Reader struct {
	b       *bufio.Reader
	line    int
	pending *physicalLine
}

type physicalLine struct {
	text string
	no   int
}

// NewReader wraps r. A leading UTF-8 byte order mark is dropped.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		b: bufio.NewReader(utfbom.SkipOnly(r)),
	}
}

func (r *Reader) readPhysical() (physicalLine, error) {
	for {
		var buf []byte
		for {
			c, err := r.b.ReadByte()
			if err != nil {
				if err == io.EOF && len(buf) > 0 {
					break
				}
				return physicalLine{}, err
			}
			if c == '\n' {
				break
			}
			if c == '\r' {
				if next, err := r.b.Peek(1); err == nil && next[0] == '\n' {
					_, _ = r.b.ReadByte()
				}
				break
			}
			buf = append(buf, c)
		}
		r.line++
		if len(buf) == 0 {
			continue
		}
		return physicalLine{text: string(buf), no: r.line}, nil
	}
}

func (r *Reader) nextPhysical() (physicalLine, error) {
	if r.pending != nil {
		p := *r.pending
		r.pending = nil
		return p, nil
	}
	return r.readPhysical()
}

// ReadLogical returns the next unfolded line together with the number of the
// physical line it started on. It returns io.EOF when the input is exhausted.
func (r *Reader) ReadLogical() (string, int, error) {
	first, err := r.nextPhysical()
	if err != nil {
		return "", 0, err
	}
	if isFoldSpace(first.text[0]) {
		return "", 0, &LexError{Line: first.no, Start: 0, End: 1, Msg: "continuation line without a preceding content line"}
	}
	var b strings.Builder
	b.WriteString(first.text)
	for {
		p, err := r.readPhysical()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, err
		}
		if !isFoldSpace(p.text[0]) {
			r.pending = &p
			break
		}
		b.WriteString(p.text[1:])
	}
	return b.String(), first.no, nil
}

// Next returns the next parsed content line and its starting line number.
func (r *Reader) Next() (ContentLine, int, error) {
	s, no, err := r.ReadLogical()
	if err != nil {
		return ContentLine{}, 0, err
	}
	cl, err := parseLine(s, no)
	return cl, no, err
}

func isFoldSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
