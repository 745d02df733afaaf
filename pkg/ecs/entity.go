package ecs

// Entity is an opaque identifier for one object in a World.
// Entities are assigned monotonically and never recycled; an Entity value
// from a cleared World will simply no longer resolve to any component.
type Entity uint64

// NoEntity is the zero Entity. It never refers to a live entity.
const NoEntity Entity = 0
