package container

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

type producerKind uint8

const (
	kindFunc producerKind = iota + 1
	kindMethod
	kindStatic
	kindValue
	kindConstruct
)

// Producer is a callable the container invokes to obtain an instance.
// Build one with Func, Method, Static or Value.
type Producer struct {
	kind   producerKind
	fn     reflect.Value // kindFunc, kindMethod (receiver bound)
	label  string        // kindMethod
	typeID string        // kindStatic
	method string        // kindStatic
	value  any           // kindValue
	typ    reflect.Type  // kindConstruct
	spec   paramSpec
}

// Func wraps a plain function or closure.
//
//	c.Set("db", container.Func(sql.Open, container.Names("driver", "dsn")))
func Func(fn any, opts ...ParamOption) Producer {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("container: Func expects a non-nil func, got %T", fn))
	}
	return Producer{kind: kindFunc, fn: v, spec: buildSpec(opts)}
}

// Method wraps the method name bound to obj.
//
//	c.Set("reports", container.Method(factory, "Reports"))
func Method(obj any, name string, opts ...ParamOption) Producer {
	m := reflect.ValueOf(obj).MethodByName(name)
	if !m.IsValid() {
		panic(fmt.Sprintf("container: %T has no method %s", obj, name))
	}
	return Producer{
		kind:  kindMethod,
		fn:    m,
		label: fmt.Sprintf("%T.%s", obj, name),
		spec:  buildSpec(opts),
	}
}

// Static wraps method name of the catalog type typeID. The receiver is a
// fresh zero value of that type, so the method must not depend on state.
// The type is looked up when the producer is first invoked.
//
//	c.Set("clock", container.Static("Clock", "System"))
func Static(typeID, name string, opts ...ParamOption) Producer {
	return Producer{kind: kindStatic, typeID: typeID, method: name, spec: buildSpec(opts)}
}

// Value wraps a pre-built value.
func Value(v any) Producer {
	return Producer{kind: kindValue, value: v}
}

func construct(t reflect.Type) Producer {
	return Producer{kind: kindConstruct, typ: t}
}

// asProducer accepts a Producer or a bare func.
func asProducer(v any, what string) Producer {
	switch p := v.(type) {
	case Producer:
		if p.kind == 0 {
			panic(fmt.Sprintf("container: zero Producer passed as %s", what))
		}
		return p
	case nil:
		panic(fmt.Sprintf("container: nil %s", what))
	}
	if reflect.TypeOf(v).Kind() != reflect.Func {
		panic(fmt.Sprintf("container: %s must be a func or container.Producer, got %T", what, v))
	}
	return Func(v)
}

// funcType is the statically known type of the callable, or nil for Static.
func (p Producer) funcType() reflect.Type {
	switch p.kind {
	case kindFunc, kindMethod:
		return p.fn.Type()
	}
	return nil
}

// producedType is the declared result type, or nil when unknown.
func (p Producer) producedType() reflect.Type {
	switch p.kind {
	case kindValue:
		return reflect.TypeOf(p.value)
	case kindConstruct:
		return reflect.PointerTo(p.typ)
	}
	if ft := p.funcType(); ft != nil {
		return valueType(ft)
	}
	return nil
}

// callable binds the producer to something reflect can call, together with
// its signature. Static producers consult the catalog here.
func (p Producer) callable(c *Container) (reflect.Value, Signature, error) {
	switch p.kind {
	case kindFunc:
		name, file, line := funcLocation(p.fn)
		return p.fn, Signature{
			Target: name, File: file, Line: line,
			Params: signatureOf(p.fn.Type(), p.spec),
		}, nil

	case kindMethod:
		return p.fn, Signature{
			Target: p.label,
			Params: signatureOf(p.fn.Type(), p.spec),
		}, nil

	case kindStatic:
		t, ok := c.catalogType(p.typeID)
		if !ok {
			return reflect.Value{}, Signature{}, &NotFoundError{ID: p.typeID}
		}
		if t.Kind() == reflect.Interface {
			return reflect.Value{}, Signature{}, errors.Wrapf(ErrInvalidProducer,
				"container: %s::%s: %s is an interface", p.typeID, p.method, t)
		}
		m := reflect.New(t).MethodByName(p.method)
		if !m.IsValid() {
			return reflect.Value{}, Signature{}, errors.Wrapf(ErrInvalidProducer,
				"container: %s has no method %s", t, p.method)
		}
		if valueType(m.Type()) == nil {
			return reflect.Value{}, Signature{}, errors.Wrapf(ErrInvalidProducer,
				"container: %s::%s returns no value", p.typeID, p.method)
		}
		return m, Signature{
			Target: p.typeID + "::" + p.method,
			Params: signatureOf(m.Type(), p.spec),
		}, nil

	case kindValue:
		return reflect.Value{}, Signature{Target: fmt.Sprintf("value %T", p.value)}, nil

	case kindConstruct:
		return reflect.Value{}, Signature{Target: "new " + p.typ.String()}, nil
	}
	return reflect.Value{}, Signature{}, errors.Wrap(ErrInvalidProducer, "container: unknown producer kind")
}

// invoke calls fn with resolved arguments. spread is set when the final
// argument already holds the whole variadic slice.
func (p Producer) invoke(fn reflect.Value, args []reflect.Value, spread bool) (any, error) {
	switch p.kind {
	case kindValue:
		return p.value, nil
	case kindConstruct:
		return reflect.New(p.typ).Interface(), nil
	}
	if spread {
		return unpack(fn.CallSlice(args))
	}
	return unpack(fn.Call(args))
}
