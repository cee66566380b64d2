package container

import (
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is an auto-wiring IoC container.
//
// It supports:
//   - Set / Bind / Instance / NoShare / SetShare
//   - Get / GetNew / Resolve (generic)
//   - Define / DefineConstructor (type catalog for auto-construction)
//   - OnInstance (post-construction hooks that may replace the instance)
//   - Call / Arguments (invoke any func with auto-resolved arguments)
//   - Defer (lazy loaders used by deferred providers)
type Container struct {
	mu sync.RWMutex

	// id → explicit producer
	producers map[string]Producer

	// id → shared instance
	instances map[string]any

	// ids exempted from the instance cache
	noShare map[string]struct{}

	// id → post-construction hooks, in registration order
	hooks map[string][]Producer

	// type catalog: id → type, and the reverse index type → id
	types   map[string]typeEntry
	typeIDs map[reflect.Type]string

	// produced type → id, recorded from explicit producers
	returnIDs map[reflect.Type]string

	// id → memoized instantiability of the catalog entry
	instantiable map[string]bool

	// id → lazy loader run before the first resolution
	deferred map[string]func()

	// id → registration generation, bumped whenever the producer, hooks or
	// sharing policy of id change. A production only caches its result if
	// the generation it started from is still current.
	gen map[string]uint64
	seq uint64

	logger   *zap.Logger
	observer Observer
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for container events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the observer notified of every resolution.
func WithObserver(o Observer) Option {
	return func(c *Container) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{logger: zap.NewNop(), observer: nopObserver{}}
	c.reset()
	for _, o := range opts {
		o(c)
	}
	// The container is bound to itself, so producers may take *Container.
	c.Instance("container", c)
	return c
}

func (c *Container) reset() {
	c.producers = make(map[string]Producer)
	c.instances = make(map[string]any)
	c.noShare = make(map[string]struct{})
	c.hooks = make(map[string][]Producer)
	c.types = make(map[string]typeEntry)
	c.typeIDs = make(map[reflect.Type]string)
	c.returnIDs = make(map[reflect.Type]string)
	c.instantiable = make(map[string]bool)
	c.deferred = make(map[string]func())
	c.gen = make(map[string]uint64)
}

// bump starts a new generation for id (must hold mu.Lock).
func (c *Container) bump(id string) {
	c.seq++
	c.gen[id] = c.seq
}

// SetLogger replaces the logger used for container events.
func (c *Container) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

func (c *Container) log() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// SetObserver replaces the resolution observer.
func (c *Container) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// ── Registration ──────────────────────────────────────────────────────────────

// Set registers producer for id with sharing enabled and drops any cached
// instance, so the next Get uses the new producer. producer is a Producer
// or a bare func; its parameters are resolved from the container.
//
// If one of producer's parameters has the type registered as id, producer is
// a decorator and is appended to id's hooks instead (see OnInstance).
//
//	c.Set("Logger", func() Logger { return &stdoutLogger{} })
//	c.Set("Service", func(l Logger) *Service { return &Service{Log: l} })
func (c *Container) Set(id string, producer any) *Container {
	return c.Bind(id, producer, true)
}

// Bind is Set with an explicit sharing policy. When share is false every Get
// of id builds a fresh instance; when true a previous NoShare is lifted.
func (c *Container) Bind(id string, producer any, share bool) *Container {
	if id == "" {
		panic("container: empty id")
	}
	p := asProducer(producer, "producer")

	if c.decorates(id, p) {
		c.addHook(id, p)
	} else {
		if ft := p.funcType(); ft != nil {
			checkResults(ft, true, "producer")
		}
		c.mu.Lock()
		c.producers[id] = p
		c.indexReturn(id, p.producedType())
		c.mu.Unlock()
	}

	c.mu.Lock()
	delete(c.instances, id)
	c.setShare(id, share)
	c.mu.Unlock()

	c.log().Debug("bound", zap.String("id", id), zap.Bool("shared", share))
	return c
}

// decorates reports whether one of p's parameters resolves through id.
func (c *Container) decorates(id string, p Producer) bool {
	ft := p.funcType()
	if ft == nil {
		return false
	}
	for i := 0; i < ft.NumIn(); i++ {
		if c.typeIDOf(ft.In(i)) == id {
			return true
		}
	}
	return false
}

// indexReturn records t as produced by id so parameters of type t resolve
// through id (must hold mu.Lock). Earlier producers keep their slot; a slot
// released by id passes to the first remaining producer of that type, by id.
func (c *Container) indexReturn(id string, t reflect.Type) {
	for k, v := range c.returnIDs {
		if v != id {
			continue
		}
		delete(c.returnIDs, k)
		if next, ok := c.producerOf(k, id); ok {
			c.returnIDs[k] = next
		}
	}
	if t == nil || isPrimitive(t) {
		return
	}
	if _, taken := c.returnIDs[t]; !taken {
		c.returnIDs[t] = id
	}
}

// producerOf returns the smallest id other than skip whose producer
// declares t (must hold mu.Lock).
func (c *Container) producerOf(t reflect.Type, skip string) (string, bool) {
	ids := make([]string, 0, len(c.producers))
	for k, p := range c.producers {
		if k != skip && p.producedType() == t {
			ids = append(ids, k)
		}
	}
	if len(ids) == 0 {
		return "", false
	}
	sort.Strings(ids)
	return ids[0], true
}

// Instance registers a pre-built value as a shared instance.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(id string, value any) *Container {
	c.Set(id, Value(value))
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, skip := c.noShare[id]; !skip {
		c.instances[id] = value
	}
	return c
}

// NoShare drops any cached instance of id and exempts id from caching.
func (c *Container) NoShare(id string) *Container {
	return c.SetShare(id, false)
}

// SetShare switches the sharing policy of id. Disabling sharing also drops
// the cached instance.
func (c *Container) SetShare(id string, share bool) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setShare(id, share)
	return c
}

func (c *Container) setShare(id string, share bool) {
	c.bump(id)
	if share {
		delete(c.noShare, id)
		return
	}
	delete(c.instances, id)
	c.noShare[id] = struct{}{}
}

// OnInstance appends a hook run after every fresh production of id. The hook
// receives the current instance through any parameter whose type id or name
// is id; other parameters are resolved from the container. A non-nil result
// replaces the instance. Instances already cached are left untouched.
//
//	c.OnInstance("Logger", func(l Logger) Logger { return &prefixed{l} })
func (c *Container) OnInstance(id string, hook any) {
	c.addHook(id, asProducer(hook, "hook"))
}

func (c *Container) addHook(id string, p Producer) {
	if ft := p.funcType(); ft != nil {
		checkResults(ft, false, "hook")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[id] = append(c.hooks[id], p)
	c.bump(id)
	c.logger.Debug("hook added", zap.String("id", id), zap.Int("hooks", len(c.hooks[id])))
}

// Defer installs a loader that runs once, right before id is first resolved.
// Has reports true for id while the loader is pending.
func (c *Container) Defer(id string, load func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred[id] = load
}

func (c *Container) loadDeferred(id string) {
	c.mu.Lock()
	load, ok := c.deferred[id]
	delete(c.deferred, id)
	c.mu.Unlock()
	if ok {
		c.log().Debug("loading deferred", zap.String("id", id))
		load()
	}
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Has reports whether id is bound or names an instantiable type.
func (c *Container) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.producers[id]; ok {
		return true
	}
	if _, ok := c.deferred[id]; ok {
		return true
	}
	return c.isInstantiable(id)
}

// Get resolves id, returning the shared instance when one is cached.
//
//	svc, err := c.Get("Service")
func (c *Container) Get(id string) (any, error) {
	return c.get(id, false, nil)
}

// GetNew always builds a fresh instance of id. The result is never cached.
func (c *Container) GetNew(id string) (any, error) {
	return c.get(id, true, nil)
}

// get is the internal resolver. chain holds the ids being produced by the
// enclosing calls.
func (c *Container) get(id string, forceNew bool, chain []string) (any, error) {
	start := time.Now()

	if !forceNew {
		c.mu.RLock()
		inst, ok := c.instances[id]
		c.mu.RUnlock()
		if ok {
			c.observe(id, true, start)
			return inst, nil
		}
	}

	if slices.Contains(chain, id) {
		return nil, c.fail(id, &CircularDependencyError{Chain: append(slices.Clone(chain), id)})
	}
	chain = append(slices.Clone(chain), id)

	c.loadDeferred(id)

	p, gen, ok := c.producerFor(id)
	if !ok {
		return nil, c.fail(id, &NotFoundError{ID: id})
	}

	inst, err := c.call(p, nil, chain, id)
	if err != nil {
		return nil, c.fail(id, err)
	}

	c.mu.RLock()
	hooks := slices.Clone(c.hooks[id])
	c.mu.RUnlock()
	for _, h := range hooks {
		out, err := c.call(h, map[string]any{id: inst}, chain, id)
		if err != nil {
			return nil, c.fail(id, err)
		}
		if !isEmpty(out) {
			inst = out
		}
	}

	c.mu.Lock()
	if _, skip := c.noShare[id]; !skip && !forceNew && c.gen[id] == gen {
		c.instances[id] = inst
	}
	c.mu.Unlock()

	c.observe(id, false, start)
	return inst, nil
}

// producerFor selects the explicit binding, else the catalog constructor,
// else zero-argument construction, together with the current generation
// of id.
func (c *Container) producerFor(id string) (Producer, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gen[id]
	if p, ok := c.producers[id]; ok {
		return p, gen, true
	}
	if !c.isInstantiable(id) {
		return Producer{}, 0, false
	}
	e := c.types[id]
	if e.ctor != nil {
		return *e.ctor, gen, true
	}
	return construct(e.typ), gen, true
}

// call resolves p's arguments and invokes it. owner is the id p produces for,
// or "" for Call/Arguments.
func (c *Container) call(p Producer, defaults map[string]any, chain []string, owner string) (any, error) {
	fn, sig, err := p.callable(c)
	if err != nil {
		return nil, err
	}
	args, spread, err := c.arguments(sig, defaults, chain)
	if err != nil {
		return nil, err
	}
	out, err := p.invoke(fn, args, spread)
	if err != nil {
		if owner == "" {
			return nil, errors.Wrapf(err, "container: %s failed", sig.Target)
		}
		return nil, errors.Wrapf(err, "container: producing [%s] with %s", owner, sig.Target)
	}
	return out, nil
}

func (c *Container) observe(id string, cached bool, start time.Time) {
	c.mu.RLock()
	o, l := c.observer, c.logger
	c.mu.RUnlock()
	elapsed := time.Since(start)
	o.OnResolve(id, cached, elapsed)
	if !cached {
		l.Debug("resolved", zap.String("id", id), zap.Duration("elapsed", elapsed))
	}
}

func (c *Container) fail(id string, err error) error {
	c.mu.RLock()
	o, l := c.observer, c.logger
	c.mu.RUnlock()
	o.OnError(id, err)
	l.Debug("resolution failed", zap.String("id", id), zap.Error(err))
	return err
}

// isEmpty is true for nil and for nil pointers, maps, slices, funcs, chans
// and interfaces.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ── Invocation ────────────────────────────────────────────────────────────────

// Call invokes fn (a func or Producer) with arguments resolved from the
// container. Entries in defaults override container lookups; keys are
// parameter type ids or parameter names.
//
//	out, err := c.Call(func(db *sql.DB) error { return db.Ping() }, nil)
func (c *Container) Call(fn any, defaults map[string]any) (any, error) {
	return c.call(asProducer(fn, "callable"), defaults, nil, "")
}

// Arguments resolves the arguments fn would be called with, without
// calling it. An omitted variadic parameter contributes nothing.
func (c *Container) Arguments(fn any, defaults map[string]any) ([]any, error) {
	p := asProducer(fn, "callable")
	_, sig, err := p.callable(c)
	if err != nil {
		return nil, err
	}
	args, _, err := c.arguments(sig, defaults, nil)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a.Interface()
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Resolved returns true if a shared instance of id is cached.
func (c *Container) Resolved(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[id]
	return ok
}

// Shared returns false if id was exempted from caching.
func (c *Container) Shared(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, skip := c.noShare[id]
	return !skip
}

// Forget removes the binding and the cached instance of id.
func (c *Container) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.producers, id)
	delete(c.instances, id)
	c.indexReturn(id, nil)
	c.bump(id)
}

// Flush resets the entire container, keeping only its self-binding.
func (c *Container) Flush() {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	c.Instance("container", c)
}

// Bindings returns the sorted ids of every explicit binding.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.producers))
	for k := range c.producers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, id string) (T, error) {
	var zero T
	instance, err := c.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.Errorf("container: Resolve[%s]: [%s] resolved to %T", reflect.TypeOf((*T)(nil)).Elem(), id, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Use it in bootstrap code
// where a missing service is fatal.
func MustResolve[T any](c *Container, id string) T {
	typed, err := Resolve[T](c, id)
	if err != nil {
		panic(err)
	}
	return typed
}
