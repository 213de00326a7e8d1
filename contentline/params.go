package contentline

import "strings"

// ParamValue is a single parameter value. Quoted records whether the value
// was written between double quotes, so that it can be written back the same
// way even when quoting is not strictly needed.
type ParamValue struct {
	Value  string
	Quoted bool
}

// Raw returns an unquoted parameter value.
func Raw(v string) ParamValue {
	return ParamValue{Value: v}
}

// Quoted returns a parameter value that is always written between quotes.
func Quoted(v string) ParamValue {
	return ParamValue{Value: v, Quoted: true}
}

// Param is one parameter of a content line with all of its values.
type Param struct {
	Name   string
	Values []ParamValue
}

// Params is the ordered parameter list of a content line. Names are
// canonicalised to upper case.
type Params []Param

func (ps Params) index(name string) int {
	name = strings.ToUpper(name)
	for i := range ps {
		if ps[i].Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether a parameter with the given name is present.
func (ps Params) Has(name string) bool {
	return ps.index(name) >= 0
}

// Get returns the values of the named parameter.
func (ps Params) Get(name string) []ParamValue {
	if i := ps.index(name); i >= 0 {
		return ps[i].Values
	}
	return nil
}

// First returns the first value of the named parameter.
func (ps Params) First(name string) (string, bool) {
	vs := ps.Get(name)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0].Value, true
}

// Strings returns the plain values of the named parameter.
func (ps Params) Strings(name string) []string {
	vs := ps.Get(name)
	if len(vs) == 0 {
		return nil
	}
	r := make([]string, len(vs))
	for i, v := range vs {
		r[i] = v.Value
	}
	return r
}

// Set replaces the values of the named parameter, keeping its position if it
// already exists and appending it otherwise.
func (ps *Params) Set(name string, values ...ParamValue) {
	name = strings.ToUpper(name)
	if i := ps.index(name); i >= 0 {
		(*ps)[i].Values = values
		return
	}
	*ps = append(*ps, Param{Name: name, Values: values})
}

// SetFirst is like Set but places a new parameter at the front.
func (ps *Params) SetFirst(name string, values ...ParamValue) {
	name = strings.ToUpper(name)
	if i := ps.index(name); i >= 0 {
		(*ps)[i].Values = values
		return
	}
	*ps = append(Params{{Name: name, Values: values}}, *ps...)
}

// Add appends values to the named parameter, creating it if needed.
func (ps *Params) Add(name string, values ...ParamValue) {
	name = strings.ToUpper(name)
	if i := ps.index(name); i >= 0 {
		(*ps)[i].Values = append((*ps)[i].Values, values...)
		return
	}
	*ps = append(*ps, Param{Name: name, Values: values})
}

// Pop removes the named parameter and returns its values.
func (ps *Params) Pop(name string) ([]ParamValue, bool) {
	i := ps.index(name)
	if i < 0 {
		return nil, false
	}
	vs := (*ps)[i].Values
	*ps = append((*ps)[:i:i], (*ps)[i+1:]...)
	if len(*ps) == 0 {
		*ps = nil
	}
	return vs, true
}

// Del removes the named parameter.
func (ps *Params) Del(name string) {
	ps.Pop(name)
}

// Clone returns a deep copy.
func (ps Params) Clone() Params {
	if ps == nil {
		return nil
	}
	r := make(Params, len(ps))
	for i, p := range ps {
		r[i] = Param{Name: p.Name, Values: append([]ParamValue(nil), p.Values...)}
	}
	return r
}

// Equal reports whether both lists hold the same parameters with the same
// values in the same order, including quoting.
func (ps Params) Equal(o Params) bool {
	if len(ps) != len(o) {
		return false
	}
	for i := range ps {
		if ps[i].Name != o[i].Name || len(ps[i].Values) != len(o[i].Values) {
			return false
		}
		for j := range ps[i].Values {
			if ps[i].Values[j] != o[i].Values[j] {
				return false
			}
		}
	}
	return true
}
