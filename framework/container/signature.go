package container

import (
	"fmt"
	"reflect"
	"runtime"
)

// ── Parameter metadata ────────────────────────────────────────────────────────

// Param describes one formal parameter of a producer.
type Param struct {
	Name       string
	Type       reflect.Type
	Default    any
	HasDefault bool
	Optional   bool
	Variadic   bool
}

// label is the name used in diagnostics: the declared name, or "#pos".
func (p Param) label(pos int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("#%d", pos)
}

// Signature is the call signature of a producer, hook or constructor.
type Signature struct {
	Target string
	File   string
	Line   int
	Params []Param
}

// ParamOption annotates the parameters of a producer. Go discards parameter
// names at compile time, so names and defaults are declared next to the func.
//
//	c.Set("mailer", container.Func(NewMailer,
//	    container.Names("host", "port"),
//	    container.Default("port", 587),
//	))
type ParamOption func(*paramSpec)

type paramSpec struct {
	names    []string
	defaults map[string]any
	optional map[string]bool
}

// Names assigns positional names to the parameters.
func Names(names ...string) ParamOption {
	return func(s *paramSpec) { s.names = append(s.names[:0], names...) }
}

// Default declares the value used when the named parameter cannot be
// resolved from the container.
func Default(name string, value any) ParamOption {
	return func(s *paramSpec) {
		if s.defaults == nil {
			s.defaults = make(map[string]any)
		}
		s.defaults[name] = value
	}
}

// Optional marks named parameters as not required; they receive their zero
// value when nothing else resolves them.
func Optional(names ...string) ParamOption {
	return func(s *paramSpec) {
		if s.optional == nil {
			s.optional = make(map[string]bool)
		}
		for _, n := range names {
			s.optional[n] = true
		}
	}
}

func buildSpec(opts []ParamOption) paramSpec {
	var s paramSpec
	for _, o := range opts {
		o(&s)
	}
	return s
}

// signatureOf reads the parameter list of fn's type and merges the parameter options into it.
func signatureOf(ft reflect.Type, spec paramSpec) []Param {
	params := make([]Param, ft.NumIn())
	for i := range params {
		p := Param{Type: ft.In(i)}
		if i < len(spec.names) {
			p.Name = spec.names[i]
		}
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			p.Variadic = true
			p.Optional = true
		}
		if p.Name != "" {
			if v, ok := spec.defaults[p.Name]; ok {
				p.Default, p.HasDefault = v, true
			}
			if spec.optional[p.Name] {
				p.Optional = true
			}
		}
		params[i] = p
	}
	return params
}

// funcLocation reports the runtime name and source position of a func value.
func funcLocation(fn reflect.Value) (name, file string, line int) {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return fn.Type().String(), "", 0
	}
	file, line = f.FileLine(f.Entry())
	return f.Name(), file, line
}

// ── Results ───────────────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// checkResults panics unless ft returns T, (T, error), error or nothing.
// Producers additionally need a value result.
func checkResults(ft reflect.Type, needValue bool, what string) {
	n := ft.NumOut()
	switch {
	case n > 2:
		panic(fmt.Sprintf("container: %s %s returns %d values", what, ft, n))
	case n == 2 && ft.Out(1) != errorType:
		panic(fmt.Sprintf("container: %s %s: second result must be error", what, ft))
	case needValue && (n == 0 || (n == 1 && ft.Out(0) == errorType)):
		panic(fmt.Sprintf("container: %s %s returns no value", what, ft))
	}
}

// unpack splits call results into the produced value and a trailing error.
func unpack(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// valueType is the declared type a func produces, or nil.
func valueType(ft reflect.Type) reflect.Type {
	if ft.NumOut() == 0 || ft.Out(0) == errorType {
		return nil
	}
	return ft.Out(0)
}
