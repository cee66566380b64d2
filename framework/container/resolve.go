package container

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// arguments materializes call arguments for sig, parameter by parameter:
//
//	a. defaults keyed by the parameter's type id, then by its name
//	b. Get(typeID) for non-primitive types, if assignable
//	c. Get(name) for named parameters, if assignable
//	d. the declared default
//	e. the zero value for optional parameters (omitted when variadic)
//	f. *ArgumentResolutionError
//
// spread reports that the last argument is a complete variadic slice.
func (c *Container) arguments(sig Signature, defaults map[string]any, chain []string) (args []reflect.Value, spread bool, err error) {
	args = make([]reflect.Value, 0, len(sig.Params))
	for i, p := range sig.Params {
		v, ok, err := c.resolveParam(p, defaults, chain)
		if err != nil {
			return nil, false, err
		}
		switch {
		case ok:
			args = append(args, v)
			spread = p.Variadic
		case p.Variadic:
			// omitted
		case p.Optional:
			args = append(args, reflect.Zero(p.Type))
		default:
			return nil, false, &ArgumentResolutionError{
				Param:    p.label(i),
				Position: i,
				Type:     p.Type,
				Target:   sig.Target,
				File:     sig.File,
				Line:     sig.Line,
			}
		}
	}
	return args, spread, nil
}

func (c *Container) resolveParam(p Param, defaults map[string]any, chain []string) (reflect.Value, bool, error) {
	typeID := c.typeIDOf(p.Type)

	if len(defaults) > 0 {
		for _, key := range []string{typeID, p.Name} {
			if key == "" {
				continue
			}
			if d, ok := defaults[key]; ok {
				if v, ok := coerce(d, p.Type, true); ok {
					return v, true, nil
				}
			}
		}
	}

	for i, id := range []string{typeID, p.Name} {
		if id == "" || (i == 1 && id == typeID) || !c.Has(id) {
			continue
		}
		inst, err := c.get(id, false, chain)
		if err != nil {
			return reflect.Value{}, false, err
		}
		if v, ok := coerce(inst, p.Type, false); ok {
			return v, true, nil
		}
		c.log().Debug("resolved value rejected",
			zap.String("id", id),
			zap.Stringer("want", p.Type),
			zap.String("got", fmt.Sprintf("%T", inst)))
	}

	if p.HasDefault {
		if v, ok := coerce(p.Default, p.Type, true); ok {
			return v, true, nil
		}
	}
	return reflect.Value{}, false, nil
}

// coerce adapts v to t. A *T is dereferenced for a T parameter and a value
// of the same basic kind is converted to a named type. nil is accepted only
// when allowNil is set and t is nillable.
func coerce(v any, t reflect.Type, allowNil bool) (reflect.Value, bool) {
	if v == nil {
		if !allowNil {
			return reflect.Value{}, false
		}
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(t) {
		return rv.Elem(), true
	}
	if rv.Kind() == t.Kind() && isBasicKind(t.Kind()) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

func isBasicKind(k reflect.Kind) bool {
	return (k >= reflect.Bool && k <= reflect.Complex128) || k == reflect.String
}
