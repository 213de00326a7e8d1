package ics

import (
	"sort"
	"strings"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ComponentBase holds what a component kept from its container without
// binding it to a typed field.
//
// Extras are the unconsumed content lines and containers in their original
// order. ExtraParams maps a field name to the parameters its lines carried
// that no codec interpreted, one entry per value.
type ComponentBase struct {
	Extras      []contentline.Item
	ExtraParams map[string][]contentline.Params
}

func (b *ComponentBase) componentBase() *ComponentBase {
	return b
}

type component interface {
	componentBase() *ComponentBase
}

func baseOf(c any) *ComponentBase {
	if b, ok := c.(component); ok {
		return b.componentBase()
	}
	return nil
}

// AddExtra appends an unbound item that is written back after the typed
// fields.
func (b *ComponentBase) AddExtra(items ...contentline.Item) {
	b.Extras = append(b.Extras, items...)
}

// ExtraLines returns the unbound content lines with the given name.
func (b *ComponentBase) ExtraLines(name Property) []contentline.ContentLine {
	var r []contentline.ContentLine
	for _, it := range b.Extras {
		if cl, ok := it.(contentline.ContentLine); ok && cl.Name == string(name) {
			r = append(r, cl)
		}
	}
	return r
}

// ExtraText returns the unescaped TEXT value of the first unbound line
// called name.
func (b *ComponentBase) ExtraText(name Property) (string, error) {
	lines := b.ExtraLines(name)
	if len(lines) == 0 {
		return "", errors.Wrap(ErrorPropertyNotFound, string(name))
	}
	return FromText(lines[0].Value)
}

func (b *ComponentBase) extraParams(field string) []contentline.Params {
	return b.ExtraParams[field]
}

func (b *ComponentBase) setExtraParams(field string, ps []contentline.Params) {
	for _, p := range ps {
		if len(p) > 0 {
			if b.ExtraParams == nil {
				b.ExtraParams = map[string][]contentline.Params{}
			}
			b.ExtraParams[field] = ps
			return
		}
	}
	delete(b.ExtraParams, field)
}

// converter binds some of a container's items to a typed component C.
type converter[C any] interface {
	lines() []string
	containers() []string
	priority() int
	// populate reports whether it consumed item.
	populate(c *C, item contentline.Item, ctx *Context) (bool, error)
	postPopulate(c *C, ctx *Context) error
	serialize(c *C, out *contentline.Container, ctx *Context) error
}

// schema is the frozen description of one component kind.
type schema[C any] struct {
	name        string
	converters  []converter[C]
	byLine      map[string][]converter[C]
	byContainer map[string][]converter[C]
	order       []converter[C]

	prePopulate   func(c *C, container *contentline.Container, ctx *Context) error
	validate      func(c *C, ctx *Context) error
	postSerialize func(c *C, out *contentline.Container, ctx *Context) error
}

func newSchema[C any](name string, converters ...converter[C]) *schema[C] {
	s := &schema[C]{
		name:        name,
		converters:  converters,
		byLine:      map[string][]converter[C]{},
		byContainer: map[string][]converter[C]{},
		order:       append([]converter[C](nil), converters...),
	}
	for _, cv := range converters {
		for _, n := range cv.lines() {
			s.byLine[n] = append(s.byLine[n], cv)
		}
		for _, n := range cv.containers() {
			s.byContainer[n] = append(s.byContainer[n], cv)
		}
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.order[i].priority() > s.order[j].priority()
	})
	return s
}

// populate binds container to c.
func (s *schema[C]) populate(c *C, container *contentline.Container, ctx *Context) error {
	if container.Name != s.name {
		return &SchemaError{Component: s.name, Msg: "cannot populate from " + container.Name}
	}
	ctx.enter(s.name, c)
	defer ctx.leave()
	base := baseOf(c)
	if s.prePopulate != nil {
		if err := s.prePopulate(c, container, ctx); err != nil {
			return err
		}
	}
	for _, item := range container.Items {
		var convs []converter[C]
		var name string
		switch it := item.(type) {
		case contentline.ContentLine:
			name = it.Name
			convs = s.byLine[name]
		case *contentline.Container:
			name = it.Name
			convs = s.byContainer[name]
		}
		consumed := false
		for _, cv := range convs {
			ok, err := cv.populate(c, item, ctx)
			if err != nil {
				return err
			}
			consumed = consumed || ok
		}
		if consumed {
			continue
		}
		if len(convs) == 0 {
			s.logUnknown(name, item, ctx)
		}
		base.Extras = append(base.Extras, item)
	}
	for _, cv := range s.converters {
		if err := cv.postPopulate(c, ctx); err != nil {
			return err
		}
	}
	if s.validate != nil {
		return s.validate(c, ctx)
	}
	return nil
}

func (s *schema[C]) logUnknown(name string, item contentline.Item, ctx *Context) {
	fields := logrus.Fields{"component": s.name}
	if _, ok := item.(*contentline.Container); ok {
		fields["subcomponent"] = name
	} else {
		fields["property"] = name
	}
	l := ctx.Logger.WithFields(fields)
	if Property(name).IsExperimental() {
		l.Debug("keeping experimental item")
		return
	}
	l.Warn("keeping unknown item")
}

// toContainer renders c.
func (s *schema[C]) toContainer(c *C, ctx *Context) (*contentline.Container, error) {
	ctx.enter(s.name, c)
	defer ctx.leave()
	out := contentline.NewContainer(s.name)
	for _, cv := range s.order {
		if err := cv.serialize(c, out, ctx); err != nil {
			return nil, err
		}
	}
	if base := baseOf(c); base != nil {
		for _, it := range base.Extras {
			out.Append(contentline.CloneItem(it))
		}
	}
	if s.postSerialize != nil {
		if err := s.postSerialize(c, out, ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeNext marks a value that shares its content line with the next value
// of the same field. It is not a valid parameter name on the wire so it can
// never collide with a real parameter.
const mergeNext = "__MERGE_NEXT__"

// parsedLine is one content line run through a codec.
type parsedLine struct {
	values []any
	codec  Codec
	// params are the parameters no codec interpreted, one list per value.
	params []contentline.Params
}

// chooseCodec picks the codec for cl: the one named by an explicit VALUE
// parameter or the default. An explicit VALUE naming the default type is
// left in the params so that it is written back.
func chooseCodec(codecs []Codec, params *contentline.Params) (Codec, bool) {
	vt, ok := params.First(string(ParameterValue))
	if !ok {
		return codecs[0], true
	}
	for i, c := range codecs {
		if strings.EqualFold(string(c.Type()), vt) {
			if i > 0 {
				params.Del(string(ParameterValue))
			}
			return c, true
		}
	}
	return nil, false
}

// parseLine decodes the value of cl with the codec selected for it. The
// result is nil when the line should be left unconsumed.
func parseLine(cl contentline.ContentLine, codecs []Codec, list bool, ctx *Context) (*parsedLine, error) {
	if cl.Value == "" {
		return nil, nil
	}
	params := cl.Params.Clone()
	codec, ok := chooseCodec(codecs, &params)
	if !ok {
		vt, _ := params.First(string(ParameterValue))
		ctx.Logger.WithFields(logrus.Fields{
			"component": ctx.componentName(),
			"property":  cl.Name,
			"value":     vt,
		}).Warn("unsupported VALUE type, keeping line unbound")
		return nil, nil
	}
	texts := []string{cl.Value}
	if list {
		texts = splitList(cl.Value)
	}
	pl := &parsedLine{codec: codec}
	var rest contentline.Params
	for i, text := range texts {
		p := params.Clone()
		v, err := codec.Parse(text, &p, ctx)
		if err != nil {
			var ve *ValueError
			if errors.As(err, &ve) && ve.Property == "" {
				ve.Property = cl.Name
			}
			return nil, err
		}
		if i == 0 {
			rest = p
		}
		pl.values = append(pl.values, v)
	}
	for i := range pl.values {
		p := rest.Clone()
		if i < len(pl.values)-1 {
			p.Set(mergeNext)
		}
		pl.params = append(pl.params, p)
	}
	return pl, nil
}

// valueLine renders one value. The VALUE parameter is added when the codec
// is not the default one.
func valueLine(property string, v any, codecs []Codec, extra contentline.Params, ctx *Context) (contentline.ContentLine, error) {
	var codec Codec
	chosen := -1
	for i, c := range codecs {
		if c.Accepts(v) {
			codec, chosen = c, i
			break
		}
	}
	if codec == nil {
		return contentline.ContentLine{}, errors.Errorf("%s: no codec for value of type %T", property, v)
	}
	params := extra.Clone()
	params.Del(mergeNext)
	text, err := codec.Serialize(v, &params, ctx)
	if err != nil {
		var ve *ValueError
		if errors.As(err, &ve) && ve.Property == "" {
			ve.Property = property
		}
		return contentline.ContentLine{}, err
	}
	if chosen > 0 {
		params.SetFirst(string(ParameterValue), contentline.Raw(string(codec.Type())))
	}
	return contentline.ContentLine{Name: property, Params: params, Value: text}, nil
}

// appendValues renders values, joining merged runs into comma separated
// lines. Without recorded parameters, adjacent list values with equal
// parameters are merged.
func appendValues(out *contentline.Container, property string, values []any, extras []contentline.Params, codecs []Codec, list bool, ctx *Context) error {
	if extras != nil && len(extras) != len(values) {
		return errors.Wrapf(ErrExtraParamsMismatch, "%s: %d values, %d parameter lists", property, len(values), len(extras))
	}
	var run *contentline.ContentLine
	explicit := false
	flush := func() {
		if run != nil {
			out.Append(*run)
			run = nil
		}
	}
	for i, v := range values {
		var extra contentline.Params
		if extras != nil {
			extra = extras[i]
		}
		cl, err := valueLine(property, v, codecs, extra, ctx)
		if err != nil {
			return err
		}
		if run != nil {
			switch {
			case cl.Params.Equal(run.Params):
				run.Value += "," + cl.Value
			case explicit:
				return &SchemaError{Component: ctx.componentName(), Property: property, Msg: "merged values carry differing parameters"}
			default:
				flush()
				run = &cl
			}
		} else {
			run = &cl
		}
		switch {
		case extras != nil:
			explicit = extra.Has(mergeNext)
		default:
			explicit = false
		}
		if !(explicit || (extras == nil && list)) {
			flush()
		}
	}
	flush()
	return nil
}

// valueConverter binds the lines of one property to one field.
type valueConverter[C any] struct {
	property string
	field    string
	codecs   []Codec
	multi    bool
	list     bool
	required bool
	exact    bool
	prio     int
	get      func(c *C) []any
	set      func(c *C, vs []any)
	def      func(c *C, ctx *Context) []any
}

func (v *valueConverter[C]) lines() []string      { return []string{v.property} }
func (v *valueConverter[C]) containers() []string { return nil }
func (v *valueConverter[C]) priority() int        { return v.prio }

func (v *valueConverter[C]) populate(c *C, item contentline.Item, ctx *Context) (bool, error) {
	cl := item.(contentline.ContentLine)
	pl, err := parseLine(cl, v.codecs, v.list, ctx)
	if err != nil || pl == nil {
		return false, err
	}
	seen := ctx.state(v, func() any { return new(bool) }).(*bool)
	if *seen && !v.multi {
		return false, ctx.schemaError(v.property, "must not occur more than once")
	}
	*seen = true
	if !v.multi && len(pl.values) > 1 {
		return false, ctx.schemaError(v.property, "takes a single value")
	}
	base := baseOf(c)
	v.set(c, append(v.get(c), pl.values...))
	params := append(base.extraParams(v.field), pl.params...)
	if n := len(v.get(c)); len(params) < n {
		params = append(make([]contentline.Params, n-len(params)), params...)
	}
	base.setExtraParams(v.field, params)
	return true, nil
}

// postPopulate applies the default or reports a missing required property.
// An exact field always holds a value, so for it only a consumed line
// counts as present.
func (v *valueConverter[C]) postPopulate(c *C, ctx *Context) error {
	if _, seen := ctx.lookupState(v); seen || (!v.exact && len(v.get(c)) > 0) {
		return nil
	}
	if v.def != nil {
		if vs := v.def(c, ctx); len(vs) > 0 {
			v.set(c, vs)
			return nil
		}
	}
	if v.required {
		return ctx.schemaError(v.property, "required property is missing")
	}
	return nil
}

func (v *valueConverter[C]) serialize(c *C, out *contentline.Container, ctx *Context) error {
	values := v.get(c)
	var extras []contentline.Params
	if len(values) == 0 && v.def != nil {
		values = v.def(c, ctx)
	} else if base := baseOf(c); base != nil {
		extras = base.extraParams(v.field)
	}
	if len(values) == 0 {
		if v.required {
			return ctx.schemaError(v.property, "required property is missing")
		}
		return nil
	}
	return appendValues(out, v.property, values, extras, v.codecs, v.list, ctx)
}

func (v *valueConverter[C]) require() *valueConverter[C] {
	v.required = true
	return v
}

func (v *valueConverter[C]) withDefault(def func(c *C, ctx *Context) []any) *valueConverter[C] {
	v.def = def
	return v
}

func (v *valueConverter[C]) withPriority(p int) *valueConverter[C] {
	v.prio = p
	return v
}

func (v *valueConverter[C]) named(field string) *valueConverter[C] {
	v.field = field
	return v
}

func fieldName(property string) string {
	return strings.ToLower(property)
}

// scalarField binds a property that occurs at most once to a field whose
// zero value means absent.
func scalarField[C any, T comparable](property Property, get func(c *C) *T, codecs ...Codec) *valueConverter[C] {
	return &valueConverter[C]{
		property: string(property),
		field:    fieldName(string(property)),
		codecs:   codecs,
		get: func(c *C) []any {
			var zero T
			if p := get(c); *p != zero {
				return []any{*p}
			}
			return nil
		},
		set: func(c *C, vs []any) {
			*get(c) = vs[len(vs)-1].(T)
		},
	}
}

// exactField binds a required property whose zero value is meaningful. It
// is always written.
func exactField[C any, T any](property Property, get func(c *C) *T, codecs ...Codec) *valueConverter[C] {
	return &valueConverter[C]{
		property: string(property),
		field:    fieldName(string(property)),
		codecs:   codecs,
		required: true,
		exact:    true,
		get: func(c *C) []any {
			return []any{*get(c)}
		},
		set: func(c *C, vs []any) {
			*get(c) = vs[len(vs)-1].(T)
		},
	}
}

// optionalField binds a property that occurs at most once to a pointer
// field.
func optionalField[C any, T any](property Property, get func(c *C) **T, codecs ...Codec) *valueConverter[C] {
	return &valueConverter[C]{
		property: string(property),
		field:    fieldName(string(property)),
		codecs:   codecs,
		get: func(c *C) []any {
			if p := *get(c); p != nil {
				return []any{*p}
			}
			return nil
		},
		set: func(c *C, vs []any) {
			v := vs[len(vs)-1].(T)
			*get(c) = &v
		},
	}
}

// listField binds every occurrence of a property, and every value of
// comma separated lines, to a slice.
func listField[C any, T any](property Property, list bool, get func(c *C) *[]T, codecs ...Codec) *valueConverter[C] {
	return &valueConverter[C]{
		property: string(property),
		field:    fieldName(string(property)),
		codecs:   codecs,
		multi:    true,
		list:     list,
		get: func(c *C) []any {
			vs := *get(c)
			if len(vs) == 0 {
				return nil
			}
			r := make([]any, len(vs))
			for i, v := range vs {
				r[i] = v
			}
			return r
		},
		set: func(c *C, vs []any) {
			r := make([]T, len(vs))
			for i, v := range vs {
				r[i] = v.(T)
			}
			*get(c) = r
		},
	}
}

// subcomponentConverter binds nested containers to a slice of typed
// subcomponents.
type subcomponentConverter[C any, S any] struct {
	names     []string
	prio      int
	schemaFor func(name string) *schema[S]
	schemaOf  func(s *S) *schema[S]
	get       func(c *C) *[]*S
}

func (sc *subcomponentConverter[C, S]) lines() []string      { return nil }
func (sc *subcomponentConverter[C, S]) containers() []string { return sc.names }
func (sc *subcomponentConverter[C, S]) priority() int        { return sc.prio }

func (sc *subcomponentConverter[C, S]) populate(c *C, item contentline.Item, ctx *Context) (bool, error) {
	container := item.(*contentline.Container)
	sub := new(S)
	if err := sc.schemaFor(container.Name).populate(sub, container, ctx); err != nil {
		return false, err
	}
	p := sc.get(c)
	*p = append(*p, sub)
	return true, nil
}

func (sc *subcomponentConverter[C, S]) postPopulate(*C, *Context) error { return nil }

func (sc *subcomponentConverter[C, S]) serialize(c *C, out *contentline.Container, ctx *Context) error {
	for _, sub := range *sc.get(c) {
		if sub == nil {
			continue
		}
		child, err := sc.schemaOf(sub).toContainer(sub, ctx)
		if err != nil {
			return err
		}
		out.Append(child)
	}
	return nil
}

func subcomponents[C any, S any](s func() *schema[S], prio int, get func(c *C) *[]*S) *subcomponentConverter[C, S] {
	return &subcomponentConverter[C, S]{
		names:     []string{s().name},
		prio:      prio,
		schemaFor: func(string) *schema[S] { return s() },
		schemaOf:  func(*S) *schema[S] { return s() },
		get:       get,
	}
}

// guarded applies a converter only to components for which when holds.
type guarded[C any] struct {
	converter[C]
	when func(c *C) bool
}

func guard[C any](when func(c *C) bool, cv converter[C]) *guarded[C] {
	return &guarded[C]{converter: cv, when: when}
}

func (g *guarded[C]) populate(c *C, item contentline.Item, ctx *Context) (bool, error) {
	if !g.when(c) {
		return false, nil
	}
	return g.converter.populate(c, item, ctx)
}

func (g *guarded[C]) postPopulate(c *C, ctx *Context) error {
	if !g.when(c) {
		return nil
	}
	return g.converter.postPopulate(c, ctx)
}

func (g *guarded[C]) serialize(c *C, out *contentline.Container, ctx *Context) error {
	if !g.when(c) {
		return nil
	}
	return g.converter.serialize(c, out, ctx)
}
