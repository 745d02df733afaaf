package ecs

import (
	"reflect"
)

// World is the entity-component substrate: it stores entities as sets of
// typed component records, holds world-scoped singleton resources, and runs
// registered systems once per Step.
//
// A World is exclusively owned by one logical thread of control. Its methods
// must not be called concurrently; the only internal concurrency is the
// parallel execution of non-conflicting systems inside Step, which is fully
// contained behind the step barrier.
type World struct {
	stores    map[reflect.Type]*componentStore
	alive     map[Entity]struct{}
	resources map[reflect.Type]any
	sched     scheduler
	commands  Commands
	nextID    uint64
}

// NewWorld creates an empty World with no entities, resources, or systems.
func NewWorld() *World {
	return &World{
		stores:    make(map[reflect.Type]*componentStore),
		alive:     make(map[Entity]struct{}),
		resources: make(map[reflect.Type]any),
	}
}

// TypeOf returns the reflect.Type of component type C. It is the currency
// used in Access declarations.
func TypeOf[C any]() reflect.Type {
	return reflect.TypeOf((*C)(nil)).Elem()
}

func (w *World) storeFor(typ reflect.Type) *componentStore {
	cs, ok := w.stores[typ]
	if !ok {
		cs = newComponentStore(typ)
		w.stores[typ] = cs
	}
	return cs
}

// box copies a component value onto the heap and returns a pointer to it as
// an interface holding *C, where C is the dynamic type of v.
func box(v any) (reflect.Type, any) {
	rv := reflect.ValueOf(v)
	typ := rv.Type()
	ptr := reflect.New(typ)
	ptr.Elem().Set(rv)
	return typ, ptr.Interface()
}

// Spawn creates a new entity owning exactly the given component records.
// Components are passed by value; each distinct dynamic type becomes one
// attached record. Spawning with no components creates a bare entity.
func (w *World) Spawn(components ...any) Entity {
	w.nextID++
	e := Entity(w.nextID)
	w.alive[e] = struct{}{}
	for _, c := range components {
		typ, ptr := box(c)
		w.storeFor(typ).insert(e, ptr)
	}
	return e
}

// Despawn removes e and all of its component records.
// Despawning an unknown entity is a no-op.
func (w *World) Despawn(e Entity) {
	if _, ok := w.alive[e]; !ok {
		return
	}
	for _, cs := range w.stores {
		cs.remove(e)
	}
	delete(w.alive, e)
}

// Clear destroys every entity and all component records. Registered systems
// and resources are untouched.
func (w *World) Clear() {
	for _, cs := range w.stores {
		cs.clear()
	}
	clear(w.alive)
}

// Alive reports whether e currently exists in the world.
func (w *World) Alive(e Entity) bool {
	_, ok := w.alive[e]
	return ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.alive)
}

// Commands returns the world's deferred mutation buffer. Systems must use it
// for all structural changes (spawn, despawn, attach, detach) so that
// component enumeration stays stable while a step batch is in flight.
// The buffer is applied at the next batch barrier.
func (w *World) Commands() *Commands {
	return &w.commands
}

// SetResource stores v as the world's singleton resource of type T,
// replacing any previous value.
func SetResource[T any](w *World, v T) {
	w.resources[TypeOf[T]()] = &v
}

// Resource returns a pointer to the world's resource of type T, if one was
// set.
func Resource[T any](w *World) (*T, bool) {
	r, ok := w.resources[TypeOf[T]()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

// MustResource is Resource for resources that are known to exist. It panics
// when no resource of type T was set, which indicates a wiring bug, not a
// runtime condition.
func MustResource[T any](w *World) *T {
	r, ok := Resource[T](w)
	if !ok {
		panic("ecs: missing resource " + TypeOf[T]().String())
	}
	return r
}

// RemoveResource drops the world's resource of type T, if any.
func RemoveResource[T any](w *World) {
	delete(w.resources, TypeOf[T]())
}
