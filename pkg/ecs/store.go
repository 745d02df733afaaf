package ecs

import "reflect"

// componentStore holds every record of a single component type, densely
// packed in insertion order. Records are boxed behind pointers so systems
// can mutate them in place through a View.
//
// Removal swap-deletes, so enumeration order is stable only between
// structural mutations.
type componentStore struct {
	typ    reflect.Type
	owners []Entity
	comps  []any // each element is a *C for the store's component type C
	index  map[Entity]int
}

func newComponentStore(typ reflect.Type) *componentStore {
	return &componentStore{
		typ:   typ,
		index: make(map[Entity]int),
	}
}

// insert attaches ptr (a *C) to e, replacing any existing record.
func (cs *componentStore) insert(e Entity, ptr any) {
	if i, ok := cs.index[e]; ok {
		cs.comps[i] = ptr
		return
	}
	cs.index[e] = len(cs.owners)
	cs.owners = append(cs.owners, e)
	cs.comps = append(cs.comps, ptr)
}

func (cs *componentStore) get(e Entity) (any, bool) {
	i, ok := cs.index[e]
	if !ok {
		return nil, false
	}
	return cs.comps[i], true
}

func (cs *componentStore) has(e Entity) bool {
	_, ok := cs.index[e]
	return ok
}

// remove detaches e's record, reporting whether one existed.
func (cs *componentStore) remove(e Entity) bool {
	i, ok := cs.index[e]
	if !ok {
		return false
	}
	last := len(cs.owners) - 1
	if i != last {
		cs.owners[i] = cs.owners[last]
		cs.comps[i] = cs.comps[last]
		cs.index[cs.owners[i]] = i
	}
	cs.owners = cs.owners[:last]
	cs.comps = cs.comps[:last]
	delete(cs.index, e)
	return true
}

func (cs *componentStore) len() int {
	return len(cs.owners)
}

func (cs *componentStore) clear() {
	cs.owners = cs.owners[:0]
	cs.comps = cs.comps[:0]
	clear(cs.index)
}
