package ecs

import "sync"

// Commands is a deferred structural-mutation buffer. Systems running inside
// a step must route all spawns, despawns, attaches, and detaches through it;
// the scheduler applies the buffer at the next batch barrier, so component
// enumeration never shifts underneath a running system.
//
// Commands is safe for concurrent use by systems of the same batch. The
// application order of commands queued by different parallel systems is
// unspecified; commands queued by a single system apply in queue order.
type Commands struct {
	mu  sync.Mutex
	ops []func(w *World)
}

func (c *Commands) push(op func(w *World)) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

// Spawn queues the creation of a new entity owning the given components.
func (c *Commands) Spawn(components ...any) {
	c.push(func(w *World) { w.Spawn(components...) })
}

// Despawn queues the destruction of e and all of its records.
func (c *Commands) Despawn(e Entity) {
	c.push(func(w *World) { w.Despawn(e) })
}

// CmdAttach queues setting e's record of component type C.
func CmdAttach[C any](c *Commands, e Entity, v C) {
	c.push(func(w *World) { Attach[C](w, e, v) })
}

// CmdDetach queues the removal of e's record of component type C.
func CmdDetach[C any](c *Commands, e Entity) {
	c.push(func(w *World) { Detach[C](w, e) })
}

// apply drains the buffer against w. Called only at a batch barrier.
func (c *Commands) apply(w *World) {
	c.mu.Lock()
	ops := c.ops
	c.ops = nil
	c.mu.Unlock()
	for _, op := range ops {
		op(w)
	}
}
