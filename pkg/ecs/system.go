package ecs

import "reflect"

// Access declares which component and resource types a system touches.
// The scheduler uses these declarations to decide which systems may run in
// parallel: two systems conflict when one writes a type the other reads or
// writes. Undeclared access is a data race waiting to happen; declare
// everything the update function touches, including resources such as the
// shared random source.
type Access struct {
	Reads  []reflect.Type
	Writes []reflect.Type
}

// Reads builds the read set of an Access declaration.
func Reads(types ...reflect.Type) []reflect.Type { return types }

// Writes builds the write set of an Access declaration.
func Writes(types ...reflect.Type) []reflect.Type { return types }

func (a Access) writesAny(types []reflect.Type) bool {
	for _, w := range a.Writes {
		for _, t := range types {
			if w == t {
				return true
			}
		}
	}
	return false
}

// Conflicts reports whether two access declarations cannot safely run in
// parallel.
func (a Access) Conflicts(b Access) bool {
	return a.writesAny(b.Writes) || a.writesAny(b.Reads) || b.writesAny(a.Reads)
}

// System is one update routine executed exactly once per world step.
type System interface {
	// Name identifies the system in errors and logs.
	Name() string
	// Access declares the component and resource types the system touches.
	Access() Access
	// Update advances the system by one step. Returning an error aborts the
	// in-flight step.
	Update(w *World) error
}

type funcSystem struct {
	name   string
	access Access
	update func(w *World) error
}

func (s *funcSystem) Name() string            { return s.name }
func (s *funcSystem) Access() Access          { return s.access }
func (s *funcSystem) Update(w *World) error   { return s.update(w) }

// NewSystem wraps an update function and its access declaration as a System.
func NewSystem(name string, access Access, update func(w *World) error) System {
	return &funcSystem{name: name, access: access, update: update}
}
