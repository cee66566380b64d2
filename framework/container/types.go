package container

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ── Type catalog ──────────────────────────────────────────────────────────────

// typeEntry is a catalog record: the base type registered under an id and
// its primary constructor, if any.
type typeEntry struct {
	typ  reflect.Type
	ctor *Producer
}

// instantiable reports whether the entry can be built without a binding.
func (e typeEntry) instantiable() bool {
	return e.ctor != nil || e.typ.Kind() == reflect.Struct
}

// Define registers the type of sample under id so parameters of that type
// resolve through id, and so Get(id) can build it. A pointer sample is
// unwrapped once: (*Service)(nil) and Service{} both register Service, and
// (*Logger)(nil) registers the Logger interface.
//
// Structs are built with zero-argument construction and yield *T. Interfaces
// are abstract: they only name a type.
//
//	c.Define("Logger", (*Logger)(nil))
//	c.Define("Service", (*Service)(nil))
func (c *Container) Define(id string, sample any) *Container {
	t := reflect.TypeOf(sample)
	if t == nil {
		panic(fmt.Sprintf("container: Define [%s] with untyped nil", id))
	}
	return c.define(id, baseType(t), nil)
}

// DefineType is the generic form of Define.
//
//	container.DefineType[Logger](c, "Logger")
func DefineType[T any](c *Container, id string) *Container {
	return c.define(id, baseType(reflect.TypeOf((*T)(nil)).Elem()), nil)
}

// DefineConstructor registers ctor as the primary constructor of the type it
// returns, under id.
//
//	c.DefineConstructor("Service", NewService)
func (c *Container) DefineConstructor(id string, ctor any, opts ...ParamOption) *Container {
	p := Func(ctor, opts...)
	ft := p.funcType()
	checkResults(ft, true, "constructor")
	return c.define(id, baseType(valueType(ft)), &p)
}

func (c *Container) define(id string, t reflect.Type, ctor *Producer) *Container {
	if id == "" {
		panic("container: empty id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.types[id]; ok {
		c.unindexType(id, old.typ)
	}
	c.types[id] = typeEntry{typ: t, ctor: ctor}
	c.typeIDs[t] = id
	if t.Kind() != reflect.Interface {
		c.typeIDs[reflect.PointerTo(t)] = id
	}
	delete(c.instantiable, id)
	c.bump(id)

	c.logger.Debug("type defined",
		zap.String("id", id),
		zap.Stringer("type", t),
		zap.Bool("constructor", ctor != nil))
	return c
}

func (c *Container) unindexType(id string, t reflect.Type) {
	for _, k := range []reflect.Type{t, reflect.PointerTo(t)} {
		if c.typeIDs[k] == id {
			delete(c.typeIDs, k)
		}
	}
}

// catalogType returns the base type registered under id.
func (c *Container) catalogType(id string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.types[id]
	return e.typ, ok
}

// isInstantiable is memoized per id (must hold mu.Lock).
func (c *Container) isInstantiable(id string) bool {
	if v, ok := c.instantiable[id]; ok {
		return v
	}
	e, ok := c.types[id]
	v := ok && e.instantiable()
	c.instantiable[id] = v
	return v
}

// typeIDOf maps a parameter type to the id used to resolve it. Primitive
// types have none.
func (c *Container) typeIDOf(t reflect.Type) string {
	c.mu.RLock()
	id, ok := c.typeIDs[t]
	if !ok {
		id, ok = c.returnIDs[t]
	}
	c.mu.RUnlock()
	if ok {
		return id
	}
	if isPrimitive(t) {
		return ""
	}
	return TypeKeyOf(t)
}

// baseType strips one level of pointer.
func baseType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// isPrimitive is true for builtin and unnamed types (int, string, []byte,
// error, func(), map[string]any).
func isPrimitive(t reflect.Type) bool {
	t = baseType(t)
	return t.Name() == "" || t.PkgPath() == ""
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// id when working with interfaces. It is also the id a parameter resolves
// through when its type was never defined or bound.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "example.com/app.UserRepository"
//	c.Set(key, NewUserRepository)
func TypeKey(v any) string {
	return TypeKeyOf(reflect.TypeOf(v))
}

// TypeKeyOf is TypeKey for a reflect.Type.
func TypeKeyOf(t reflect.Type) string {
	t = baseType(t)
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
