package ecs

// Attach sets e's record of component type C, replacing any existing one.
// Attach must not be called while a step is in flight; systems use
// Commands instead.
func Attach[C any](w *World, e Entity, c C) {
	if !w.Alive(e) {
		return
	}
	w.storeFor(TypeOf[C]()).insert(e, &c)
}

// Detach removes e's record of component type C, reporting whether one
// existed. The same in-flight restriction as Attach applies.
func Detach[C any](w *World, e Entity) bool {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return false
	}
	return cs.remove(e)
}

// Get returns a pointer to e's record of component type C. Mutations through
// the pointer are visible immediately.
func Get[C any](w *World, e Entity) (*C, bool) {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return nil, false
	}
	v, ok := cs.get(e)
	if !ok {
		return nil, false
	}
	return v.(*C), true
}

// Has reports whether e carries a record of component type C.
func Has[C any](w *World, e Entity) bool {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return false
	}
	return cs.has(e)
}

// A Filter restricts a View to entities satisfying an extra predicate.
type Filter func(w *World, e Entity) bool

// With keeps only entities that also carry a record of marker type M.
func With[M any]() Filter {
	return func(w *World, e Entity) bool { return Has[M](w, e) }
}

// Without keeps only entities that carry no record of marker type M.
func Without[M any]() Filter {
	return func(w *World, e Entity) bool { return !Has[M](w, e) }
}

func matches(w *World, e Entity, filters []Filter) bool {
	for _, f := range filters {
		if !f(w, e) {
			return false
		}
	}
	return true
}

// View calls fn once for every entity carrying a record of component type C
// and passing all filters. The record pointer may be mutated in place.
// Enumeration order is the store's internal order: stable between structural
// mutations, otherwise unspecified.
//
// fn must not structurally mutate the world; use Commands for that.
func View[C any](w *World, fn func(Entity, *C), filters ...Filter) {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return
	}
	for i, e := range cs.owners {
		if !matches(w, e, filters) {
			continue
		}
		fn(e, cs.comps[i].(*C))
	}
}

// Count returns the number of entities carrying a record of component type C
// and passing all filters. Zero is a valid result.
func Count[C any](w *World, filters ...Filter) int {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return 0
	}
	if len(filters) == 0 {
		return cs.len()
	}
	n := 0
	for _, e := range cs.owners {
		if matches(w, e, filters) {
			n++
		}
	}
	return n
}

// Collect returns copies of every record of component type C from entities
// passing all filters, in the View enumeration order.
func Collect[C any](w *World, filters ...Filter) []C {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return nil
	}
	out := make([]C, 0, cs.len())
	for i, e := range cs.owners {
		if !matches(w, e, filters) {
			continue
		}
		out = append(out, *cs.comps[i].(*C))
	}
	return out
}

// EntitiesOf returns the entities carrying a record of component type C and
// passing all filters, in the View enumeration order.
func EntitiesOf[C any](w *World, filters ...Filter) []Entity {
	cs, ok := w.stores[TypeOf[C]()]
	if !ok {
		return nil
	}
	out := make([]Entity, 0, cs.len())
	for _, e := range cs.owners {
		if matches(w, e, filters) {
			out = append(out, e)
		}
	}
	return out
}
