package ecs

import "testing"

type health struct{ HP int }
type infected struct{}

func TestView_FiltersAndMutation(t *testing.T) {
	w := NewWorld()
	w.Spawn(health{HP: 10}, infected{})
	w.Spawn(health{HP: 20})
	w.Spawn(health{HP: 30}, infected{})
	w.Spawn(infected{})

	// count with presence and absence filters
	if got := Count[health](w); got != 3 {
		t.Fatalf("Count[health] = %d, want 3", got)
	}
	if got := Count[health](w, With[infected]()); got != 2 {
		t.Fatalf("Count[health] with infected = %d, want 2", got)
	}
	if got := Count[health](w, Without[infected]()); got != 1 {
		t.Fatalf("Count[health] without infected = %d, want 1", got)
	}

	// mutate only the infected
	View(w, func(_ Entity, h *health) { h.HP-- }, With[infected]())

	total := 0
	for _, h := range Collect[health](w) {
		total += h.HP
	}
	if total != 58 {
		t.Errorf("total HP = %d, want 58", total)
	}
}

func TestView_MissingComponentType(t *testing.T) {
	w := NewWorld()
	w.Spawn(infected{})

	called := false
	View(w, func(_ Entity, _ *health) { called = true })
	if called {
		t.Error("View over an absent component type must not call fn")
	}
	if got := Count[health](w); got != 0 {
		t.Errorf("Count over an absent component type = %d, want 0", got)
	}
	if got := Collect[health](w); got != nil {
		t.Errorf("Collect over an absent component type = %v, want nil", got)
	}
}

func TestCollect_InsertionOrder(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 5; i++ {
		w.Spawn(health{HP: i})
	}

	got := Collect[health](w)
	if len(got) != 5 {
		t.Fatalf("expected 5 records, got %d", len(got))
	}
	for i, h := range got {
		if h.HP != i {
			t.Fatalf("record %d = %+v, enumeration should follow insertion order", i, h)
		}
	}
}

func TestEntitiesOf(t *testing.T) {
	w := NewWorld()
	a := w.Spawn(health{}, infected{})
	w.Spawn(health{})

	got := EntitiesOf[health](w, With[infected]())
	if len(got) != 1 || got[0] != a {
		t.Fatalf("EntitiesOf = %v, want [%d]", got, a)
	}
}
