// Package contentline implements the RFC 5545 line grammar: unfolding,
// content line tokenising, BEGIN/END container trees and folded output.
package contentline

import (
	"fmt"
	"strings"
)

// ContentLine is one unfolded RFC 5545 property: a name, its parameters and
// the raw value text. Value escaping is left to the value codecs.
type ContentLine struct {
	Name   string
	Params Params
	Value  string
}

// New returns a content line with a canonical upper case name.
func New(name, value string, params ...Param) ContentLine {
	return ContentLine{Name: strings.ToUpper(name), Params: params, Value: value}
}

// Clone returns a copy that shares nothing with cl.
func (cl ContentLine) Clone() ContentLine {
	return ContentLine{Name: cl.Name, Params: cl.Params.Clone(), Value: cl.Value}
}

func (ContentLine) item() {}

/*
   contentline   = name *(";" param ) ":" value CRLF

   name          = iana-token / x-name
   iana-token    = 1*(ALPHA / DIGIT / "-")

   param         = param-name "=" param-value *("," param-value)
   param-value   = paramtext / quoted-string
   paramtext     = *SAFE-CHAR
   quoted-string = DQUOTE *QSAFE-CHAR DQUOTE

   QSAFE-CHAR    = WSP / %x21 / %x23-7E / NON-US-ASCII
   ; Any character except CONTROL and DQUOTE

   SAFE-CHAR     = WSP / %x21 / %x23-2B / %x2D-39 / %x3C-7E
                 / NON-US-ASCII
   ; Any character except CONTROL, DQUOTE, ";", ":", ","

   CONTROL       = %x00-08 / %x0A-1F / %x7F
   ; All the controls except HTAB

   RFC 6868 adds the caret escape inside parameter values:
   ^n is a newline, ^^ is a caret and ^' is a double quote.
*/

// ParseLine parses one unfolded logical line.
func ParseLine(line string) (ContentLine, error) {
	return parseLine(line, 0)
}

func parseLine(s string, lineNo int) (ContentLine, error) {
	var cl ContentLine
	p := strings.IndexAny(s, ";:")
	if p < 0 {
		return cl, &LexError{Line: lineNo, Start: 0, End: len(s), Msg: "missing ':' separator"}
	}
	if !isName(s[:p]) {
		return cl, &LexError{Line: lineNo, Start: 0, End: p, Msg: fmt.Sprintf("invalid property name %q", s[:p])}
	}
	cl.Name = strings.ToUpper(s[:p])
	for s[p] == ';' {
		p++
		start := p
		for p < len(s) && isNameChar(s[p]) {
			p++
		}
		if p == start {
			return cl, &LexError{Line: lineNo, Start: start, End: p, Msg: "missing parameter name"}
		}
		if p >= len(s) || s[p] != '=' {
			return cl, &LexError{Line: lineNo, Start: start, End: p, Msg: fmt.Sprintf("missing '=' after parameter %s", s[start:p])}
		}
		name := strings.ToUpper(s[start:p])
		p++
		for {
			v, np, err := parseParamValue(s, p, lineNo)
			if err != nil {
				return cl, err
			}
			cl.Params.Add(name, v)
			p = np
			if s[p] != ',' {
				break
			}
			p++
		}
	}
	cl.Value = s[p+1:]
	return cl, nil
}

// parseParamValue reads one raw or quoted value starting at p. On success the
// returned position points at the delimiter that follows it, which is one of
// ',', ';' or ':'.
func parseParamValue(s string, p int, lineNo int) (ParamValue, int, error) {
	start := p
	if p < len(s) && s[p] == '"' {
		p++
		for p < len(s) && s[p] != '"' {
			if isCTL(s[p]) {
				return ParamValue{}, 0, &LexError{Line: lineNo, Start: p, End: p + 1, Msg: fmt.Sprintf("unexpected control character 0x%02x in quoted parameter value", s[p])}
			}
			p++
		}
		if p >= len(s) {
			return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: len(s), Msg: "unterminated quoted parameter value"}
		}
		raw := s[start+1 : p]
		p++
		if p >= len(s) {
			return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: p, Msg: "missing ':' separator"}
		}
		if c := s[p]; c != ',' && c != ';' && c != ':' {
			return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: p + 1, Msg: fmt.Sprintf("unexpected %q after closing quote", c)}
		}
		v, err := decodeParamValue(raw)
		if err != nil {
			return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: p, Msg: err.Error()}
		}
		return ParamValue{Value: v, Quoted: true}, p, nil
	}
	for p < len(s) && s[p] != ',' && s[p] != ';' && s[p] != ':' {
		if s[p] == '"' {
			return ParamValue{}, 0, &LexError{Line: lineNo, Start: p, End: p + 1, Msg: "unexpected double quote in parameter value"}
		}
		if isCTL(s[p]) {
			return ParamValue{}, 0, &LexError{Line: lineNo, Start: p, End: p + 1, Msg: fmt.Sprintf("unexpected control character 0x%02x in parameter value", s[p])}
		}
		p++
	}
	if p == start {
		return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: p, Msg: "empty parameter value"}
	}
	if p >= len(s) {
		return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: p, Msg: "missing ':' separator"}
	}
	v, err := decodeParamValue(s[start:p])
	if err != nil {
		return ParamValue{}, 0, &LexError{Line: lineNo, Start: start, End: p, Msg: err.Error()}
	}
	return ParamValue{Value: v}, p, nil
}

func decodeParamValue(s string) (string, error) {
	if strings.IndexByte(s, '^') < 0 {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '^' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("parameter value ends with a lone '^'")
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case '^':
			b.WriteByte('^')
		case '\'':
			b.WriteByte('"')
		default:
			return "", fmt.Errorf("invalid escape ^%c in parameter value", s[i])
		}
	}
	return b.String(), nil
}

var paramEscaper = strings.NewReplacer(
	"^", "^^",
	"\n", "^n",
	`"`, "^'",
)

func encodeParamValue(v ParamValue) (string, error) {
	e := paramEscaper.Replace(v.Value)
	for i := 0; i < len(e); i++ {
		if isCTL(e[i]) {
			return "", fmt.Errorf("parameter value %q contains control character 0x%02x", v.Value, e[i])
		}
	}
	if v.Quoted || e == "" || strings.ContainsAny(e, ":;,") {
		return `"` + e + `"`, nil
	}
	return e, nil
}

// Serialize renders the unfolded line. Parameters without values are
// skipped.
func (cl ContentLine) Serialize() (string, error) {
	if !isName(cl.Name) {
		return "", fmt.Errorf("invalid property name %q", cl.Name)
	}
	if strings.ContainsAny(cl.Value, "\r\n") {
		return "", fmt.Errorf("value of %s contains a line break", cl.Name)
	}
	var b strings.Builder
	b.WriteString(strings.ToUpper(cl.Name))
	for _, p := range cl.Params {
		if len(p.Values) == 0 {
			continue
		}
		if !isName(p.Name) {
			return "", fmt.Errorf("invalid parameter name %q on %s", p.Name, cl.Name)
		}
		b.WriteByte(';')
		b.WriteString(strings.ToUpper(p.Name))
		b.WriteByte('=')
		for i, v := range p.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			e, err := encodeParamValue(v)
			if err != nil {
				return "", err
			}
			b.WriteString(e)
		}
	}
	b.WriteByte(':')
	b.WriteString(cl.Value)
	return b.String(), nil
}

func (cl ContentLine) String() string {
	s, err := cl.Serialize()
	if err != nil {
		return fmt.Sprintf("%s<%v>", cl.Name, err)
	}
	return s
}

// IsName reports whether s is a valid property, parameter or component name.
func IsName(s string) bool {
	return isName(s)
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func isNameChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-'
}

func isCTL(c byte) bool {
	return c <= 0x08 || c >= 0x0A && c <= 0x1F || c == 0x7F
}
