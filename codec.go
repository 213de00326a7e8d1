package ics

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/teambition/rrule-go"
)

// Codec parses and serialises one value type. Parse may remove the
// parameters it interprets from params; Serialize may add the parameters it
// needs. Accepts reports whether Serialize can handle v.
type Codec interface {
	Type() ValueDataType
	Accepts(v any) bool
	Parse(text string, params *contentline.Params, ctx *Context) (any, error)
	Serialize(v any, params *contentline.Params, ctx *Context) (string, error)
}

var codecs = map[ValueDataType]Codec{}

func registerCodec(c Codec) Codec {
	codecs[c.Type()] = c
	return c
}

// LookupCodec returns the codec for a value type.
func LookupCodec(t ValueDataType) (Codec, bool) {
	c, ok := codecs[t]
	return c, ok
}

var (
	TextCodec       = registerCodec(textCodec{})
	IntegerCodec    = registerCodec(integerCodec{})
	BooleanCodec    = registerCodec(booleanCodec{})
	FloatCodec      = registerCodec(floatCodec{})
	BinaryCodec     = registerCodec(binaryCodec{})
	URICodec        = registerCodec(uriCodec{t: ValueDataTypeUri})
	CalAddressCodec = registerCodec(uriCodec{t: ValueDataTypeCalAddress})
	DateCodec       = registerCodec(dateCodec{})
	DateTimeCodec   = registerCodec(dateTimeCodec{})
	TimeCodec       = registerCodec(timeCodec{})
	DurationCodec   = registerCodec(durationCodec{})
	PeriodCodec     = registerCodec(periodCodec{})
	UTCOffsetCodec  = registerCodec(utcOffsetCodec{})
	GeoCodec        = registerCodec(geoCodec{})
	RecurCodec      = registerCodec(recurCodec{})
)

type textCodec struct{}

func (textCodec) Type() ValueDataType { return ValueDataTypeText }

func (textCodec) Accepts(v any) bool {
	_, ok := v.(string)
	return ok
}

func (textCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	return FromText(s)
}

func (textCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	return ToText(v.(string)), nil
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	`;`, `\;`,
	`,`, `\,`,
)

// ToText escapes s as a TEXT value.
func ToText(s string) string {
	return textEscaper.Replace(s)
}

// FromText unescapes a TEXT value. Unescaped commas and semicolons and
// unknown escapes are rejected.
func FromText(s string) (string, error) {
	if !strings.ContainsAny(s, `\;,`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 >= len(s) {
				return "", valueErrorf(ValueDataTypeText, s, "dangling backslash")
			}
			i++
			switch s[i] {
			case '\\', ';', ',':
				b.WriteByte(s[i])
			case 'n', 'N':
				b.WriteByte('\n')
			case 'r', 'R':
				b.WriteByte('\r')
			default:
				return "", valueErrorf(ValueDataTypeText, s, "invalid escape %q", s[i-1:i+1])
			}
		case ';', ',':
			return "", valueErrorf(ValueDataTypeText, s, "unescaped %q", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// splitList splits a value list at commas that are not escaped.
func splitList(s string) []string {
	var r []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case ',':
			r = append(r, s[start:i])
			start = i + 1
		}
	}
	return append(r, s[start:])
}

var integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)

type integerCodec struct{}

func (integerCodec) Type() ValueDataType { return ValueDataTypeInteger }

func (integerCodec) Accepts(v any) bool {
	_, ok := v.(int)
	return ok
}

func (integerCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	if !integerPattern.MatchString(s) {
		return nil, valueErrorf(ValueDataTypeInteger, s, "not an integer")
	}
	i, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return nil, &ValueError{Type: ValueDataTypeInteger, Value: s, Err: err}
	}
	return i, nil
}

func (integerCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	return strconv.Itoa(v.(int)), nil
}

type booleanCodec struct{}

func (booleanCodec) Type() ValueDataType { return ValueDataTypeBoolean }

func (booleanCodec) Accepts(v any) bool {
	_, ok := v.(bool)
	return ok
}

func (booleanCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	switch strings.ToUpper(s) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}
	return nil, valueErrorf(ValueDataTypeBoolean, s, "expected TRUE or FALSE")
}

func (booleanCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	if v.(bool) {
		return "TRUE", nil
	}
	return "FALSE", nil
}

var floatPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

type floatCodec struct{}

func (floatCodec) Type() ValueDataType { return ValueDataTypeFloat }

func (floatCodec) Accepts(v any) bool {
	_, ok := v.(float64)
	return ok
}

func (floatCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	return parseFloat(ValueDataTypeFloat, s)
}

func (floatCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	return formatFloat(v.(float64)), nil
}

func parseFloat(t ValueDataType, s string) (float64, error) {
	if !floatPattern.MatchString(s) {
		return 0, valueErrorf(t, s, "not a float")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValueError{Type: t, Value: s, Err: err}
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type binaryCodec struct{}

func (binaryCodec) Type() ValueDataType { return ValueDataTypeBinary }

func (binaryCodec) Accepts(v any) bool {
	_, ok := v.([]byte)
	return ok
}

func (binaryCodec) Parse(s string, params *contentline.Params, _ *Context) (any, error) {
	if enc, ok := params.First(string(ParameterEncoding)); ok {
		if !strings.EqualFold(enc, "BASE64") {
			return nil, valueErrorf(ValueDataTypeBinary, s, "unsupported ENCODING %s", enc)
		}
		params.Del(string(ParameterEncoding))
	}
	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, &ValueError{Type: ValueDataTypeBinary, Value: s, Err: err}
	}
	return b, nil
}

func (binaryCodec) Serialize(v any, params *contentline.Params, _ *Context) (string, error) {
	params.Set(string(ParameterEncoding), contentline.Raw("BASE64"))
	return base64.StdEncoding.EncodeToString(v.([]byte)), nil
}

type uriCodec struct {
	t ValueDataType
}

func (c uriCodec) Type() ValueDataType { return c.t }

func (uriCodec) Accepts(v any) bool {
	_, ok := v.(*url.URL)
	return ok
}

func (c uriCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, &ValueError{Type: c.t, Value: s, Err: err}
	}
	return u, nil
}

func (uriCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	return v.(*url.URL).String(), nil
}

var utcOffsetPattern = regexp.MustCompile(`^([+-])([0-9]{2})([0-9]{2})([0-9]{2})?$`)

type utcOffsetCodec struct{}

func (utcOffsetCodec) Type() ValueDataType { return ValueDataTypeUtcOffset }

func (utcOffsetCodec) Accepts(v any) bool {
	_, ok := v.(UTCOffset)
	return ok
}

func (utcOffsetCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	return ParseUTCOffset(s)
}

func (utcOffsetCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	return formatUTCOffset(v.(UTCOffset)), nil
}

// ParseUTCOffset parses ±HHMM[SS].
func ParseUTCOffset(s string) (UTCOffset, error) {
	m := utcOffsetPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, valueErrorf(ValueDataTypeUtcOffset, s, "expected ±HHMM[SS]")
	}
	h, _ := strconv.Atoi(m[2])
	min, _ := strconv.Atoi(m[3])
	sec := 0
	if m[4] != "" {
		sec, _ = strconv.Atoi(m[4])
	}
	if min > 59 || sec > 59 {
		return 0, valueErrorf(ValueDataTypeUtcOffset, s, "minutes and seconds must be below 60")
	}
	total := h*3600 + min*60 + sec
	if m[1] == "-" {
		total = -total
	}
	return UTCOffset(total) * UTCOffset(1e9), nil
}

func formatUTCOffset(o UTCOffset) string {
	secs := o.Seconds()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	s := sign + twoDigits(secs/3600) + twoDigits(secs/60%60)
	if secs%60 != 0 {
		s += twoDigits(secs % 60)
	}
	return s
}

func twoDigits(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

type geoCodec struct{}

func (geoCodec) Type() ValueDataType { return "GEO" }

func (geoCodec) Accepts(v any) bool {
	_, ok := v.(Geo)
	return ok
}

func (geoCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 2 {
		return nil, valueErrorf("GEO", s, "expected two semicolon separated floats")
	}
	lat, err := parseFloat("GEO", parts[0])
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("GEO", parts[1])
	if err != nil {
		return nil, err
	}
	return Geo{Latitude: lat, Longitude: lon}, nil
}

func (geoCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	g := v.(Geo)
	return formatFloat(g.Latitude) + ";" + formatFloat(g.Longitude), nil
}

type recurCodec struct{}

func (recurCodec) Type() ValueDataType { return ValueDataTypeRecur }

func (recurCodec) Accepts(v any) bool {
	_, ok := v.(rrule.ROption)
	return ok
}

func (recurCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return nil, &ValueError{Type: ValueDataTypeRecur, Value: s, Err: err}
	}
	return *opt, nil
}

func (recurCodec) Serialize(v any, _ *contentline.Params, ctx *Context) (string, error) {
	opt := v.(rrule.ROption)
	return recurText(opt.RRuleString(), ctx), nil
}
