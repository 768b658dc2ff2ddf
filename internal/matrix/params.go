package matrix

import (
	"math"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	kindInt valueKind = iota
	kindFloat
	kindBool
)

// Value is a single filter argument: an integer, a float or a boolean.
type Value struct {
	kind valueKind
	i    int64
	f    float64
	b    bool
}

// Int returns an integer Value
func Int(v int64) Value { return Value{kind: kindInt, i: v} }

// Float returns a floating point Value
func Float(v float64) Value { return Value{kind: kindFloat, f: v} }

// Bool returns a boolean Value
func Bool(v bool) Value { return Value{kind: kindBool, b: v} }

// String renders the value as a VapourSynth (Python) literal.
func (v Value) String() string {
	switch v.kind {
	case kindBool:
		if v.b {
			return "True"
		}
		return "False"
	case kindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return "float('" + strconv.FormatFloat(v.f, 'g', -1, 64) + "')"
		}
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		// Keep floats distinguishable from ints: 2 -> 2.0
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

type param struct {
	name  string
	value Value
}

// Params is an ordered set of named filter arguments. Rendering follows
// insertion order so a given parameter set always yields the same text.
// The zero value is an empty set ready to use.
type Params struct {
	entries []param
}

// P builds Params from alternating name/value pairs, which keeps the
// registry tables readable.
func P(pairs ...any) Params {
	if len(pairs)%2 != 0 {
		panic("matrix.P: odd number of arguments")
	}
	var p Params
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("matrix.P: parameter name must be a string")
		}
		p = p.With(name, toValue(pairs[i+1]))
	}
	return p
}

func toValue(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float64:
		return Float(x)
	case bool:
		return Bool(x)
	default:
		panic("matrix.P: unsupported value type")
	}
}

// With returns a copy of p with name set to v. An existing entry keeps its
// position; a new one is appended.
func (p Params) With(name string, v Value) Params {
	out := Params{entries: make([]param, len(p.entries), len(p.entries)+1)}
	copy(out.entries, p.entries)
	for i := range out.entries {
		if out.entries[i].name == name {
			out.entries[i].value = v
			return out
		}
	}
	out.entries = append(out.entries, param{name: name, value: v})
	return out
}

// Get returns the value stored under name
func (p Params) Get(name string) (Value, bool) {
	for _, e := range p.entries {
		if e.name == name {
			return e.value, true
		}
	}
	return Value{}, false
}

// Len returns the number of parameters
func (p Params) Len() int { return len(p.entries) }

// Names returns parameter names in insertion order
func (p Params) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.name
	}
	return names
}

// String renders keyword arguments, e.g. "hpad=4, vpad=4".
func (p Params) String() string {
	var sb strings.Builder
	for i, e := range p.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.name)
		sb.WriteByte('=')
		sb.WriteString(e.value.String())
	}
	return sb.String()
}

// ParameterSet is one named configuration variant of a filter.
type ParameterSet struct {
	Name   string
	Params Params
}
