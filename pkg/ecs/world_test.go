package ecs

import "testing"

type position struct{ X, Y int }
type velocity struct{ DX, DY int }
type tag struct{}

func TestWorld_SpawnAndGet(t *testing.T) {
	w := NewWorld()

	e := w.Spawn(position{X: 1, Y: 2}, velocity{DX: 3, DY: 4})
	if !w.Alive(e) {
		t.Fatalf("spawned entity %d should be alive", e)
	}
	if w.Len() != 1 {
		t.Fatalf("expected 1 entity, got %d", w.Len())
	}

	p, ok := Get[position](w, e)
	if !ok {
		t.Fatal("expected position component")
	}
	if p.X != 1 || p.Y != 2 {
		t.Errorf("unexpected position: %+v", *p)
	}

	// mutation through the pointer is visible on the next read
	p.X = 10
	p2, _ := Get[position](w, e)
	if p2.X != 10 {
		t.Errorf("expected mutated X=10, got %d", p2.X)
	}

	if _, ok := Get[tag](w, e); ok {
		t.Error("entity should not carry tag")
	}
}

func TestWorld_SpawnBare(t *testing.T) {
	w := NewWorld()
	e := w.Spawn()
	if !w.Alive(e) {
		t.Fatal("bare entity should be alive")
	}
	if Has[position](w, e) {
		t.Error("bare entity should carry no components")
	}
}

func TestWorld_AttachDetach(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(position{})

	Attach(w, e, velocity{DX: 1})
	if !Has[velocity](w, e) {
		t.Fatal("expected velocity after attach")
	}

	// attach replaces an existing record
	Attach(w, e, velocity{DX: 9})
	v, _ := Get[velocity](w, e)
	if v.DX != 9 {
		t.Errorf("expected replaced velocity DX=9, got %d", v.DX)
	}

	if !Detach[velocity](w, e) {
		t.Fatal("detach should report an existing record")
	}
	if Has[velocity](w, e) {
		t.Error("velocity should be gone after detach")
	}
	if Detach[velocity](w, e) {
		t.Error("second detach should report no record")
	}
}

func TestWorld_Despawn(t *testing.T) {
	w := NewWorld()
	a := w.Spawn(position{X: 1})
	b := w.Spawn(position{X: 2})

	w.Despawn(a)
	if w.Alive(a) {
		t.Fatal("despawned entity should not be alive")
	}
	if w.Len() != 1 {
		t.Fatalf("expected 1 entity, got %d", w.Len())
	}
	if Count[position](w) != 1 {
		t.Fatalf("expected 1 position record, got %d", Count[position](w))
	}
	if p, ok := Get[position](w, b); !ok || p.X != 2 {
		t.Error("surviving entity's record should be intact")
	}

	// unknown entity is a no-op
	w.Despawn(Entity(999))
	if w.Len() != 1 {
		t.Error("despawning an unknown entity must not change the world")
	}
}

func TestWorld_Clear(t *testing.T) {
	w := NewWorld()
	SetResource(w, 42)
	for i := 0; i < 10; i++ {
		w.Spawn(position{X: i})
	}

	w.Clear()
	if w.Len() != 0 {
		t.Fatalf("expected empty world, got %d entities", w.Len())
	}
	if Count[position](w) != 0 {
		t.Fatalf("expected 0 position records, got %d", Count[position](w))
	}

	// resources survive a clear
	r, ok := Resource[int](w)
	if !ok || *r != 42 {
		t.Error("resources must survive Clear")
	}

	// identities are not recycled
	e := w.Spawn(position{})
	if e <= Entity(10) {
		t.Errorf("expected fresh identity after clear, got %d", e)
	}
}

func TestWorld_Resources(t *testing.T) {
	w := NewWorld()

	if _, ok := Resource[string](w); ok {
		t.Fatal("unset resource should not resolve")
	}

	SetResource(w, "hello")
	r := MustResource[string](w)
	if *r != "hello" {
		t.Fatalf("unexpected resource value %q", *r)
	}

	*r = "changed"
	if *MustResource[string](w) != "changed" {
		t.Error("resource mutation through the pointer should persist")
	}

	SetResource(w, "replaced")
	if *MustResource[string](w) != "replaced" {
		t.Error("SetResource should replace the value")
	}

	RemoveResource[string](w)
	if _, ok := Resource[string](w); ok {
		t.Error("removed resource should not resolve")
	}
}
