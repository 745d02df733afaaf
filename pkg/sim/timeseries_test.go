package sim

import (
	"errors"
	"testing"

	"github.com/daniacca/entropia/pkg/ecs"
)

func TestRecordTimeSeries_SamplesEveryInterval(t *testing.T) {
	b := NewBuilder().
		AddEntitySpawner(spawnCounters(10)).
		AddSystems(incrementSystem())
	if err := RecordTimeSeries[counter, int](b, 2); err != nil {
		t.Fatalf("record: %v", err)
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.Run(6); err != nil {
		t.Fatal(err)
	}

	series, err := TimeSeriesOf[counter, int](s)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	// sampled after steps 2, 4, 6: sums 20, 40, 60
	want := []int{20, 40, 60}
	if len(series) != len(want) {
		t.Fatalf("series length = %d, want %d (%v)", len(series), len(want), series)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, series[i], want[i])
		}
	}
}

func TestRecordTimeSeries_ResetClears(t *testing.T) {
	b := NewBuilder().
		AddEntitySpawner(spawnCounters(1)).
		AddSystems(incrementSystem())
	if err := RecordTimeSeries[counter, int](b, 1); err != nil {
		t.Fatal(err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Run(3); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}

	series, err := TimeSeriesOf[counter, int](s)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 0 {
		t.Errorf("series after reset = %v, want empty", series)
	}
}

func TestRecordTimeSeries_DuplicateRejected(t *testing.T) {
	b := NewBuilder().AddEntitySpawner(spawnCounters(1))
	if err := RecordTimeSeries[counter, int](b, 1); err != nil {
		t.Fatal(err)
	}
	err := RecordTimeSeries[counter, int](b, 5)
	if !errors.Is(err, ErrDuplicateTimeSeries) {
		t.Fatalf("expected ErrDuplicateTimeSeries, got %v", err)
	}
}

func TestRecordTimeSeries_InvalidInterval(t *testing.T) {
	b := NewBuilder().AddEntitySpawner(spawnCounters(1))
	if err := RecordTimeSeries[counter, int](b, 0); err == nil {
		t.Fatal("interval 0 must be rejected")
	}
}

func TestTimeSeriesOf_NotRegistered(t *testing.T) {
	s := counterSim(t, 1)
	_, err := TimeSeriesOf[counter, int](s)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// tsGauge is a per-entity sampled component; tag identifies its carrier.
type tsGauge struct{ Level int }

func (g tsGauge) Observe() int { return g.Level }

type tag struct{ Name string }

func gaugeRecipe() *Builder {
	raise := ecs.NewSystem("raise",
		ecs.Access{Writes: ecs.Writes(ecs.TypeOf[tsGauge]())},
		func(w *ecs.World) error {
			ecs.View(w, func(_ ecs.Entity, g *tsGauge) { g.Level++ })
			return nil
		})
	return NewBuilder().
		AddEntitySpawner(func(sp *Spawner) {
			sp.Spawn(tsGauge{Level: 0}, tag{Name: "a"})
			sp.Spawn(tsGauge{Level: 10}, tag{Name: "b"})
			// no tag: sampled by no per-entity series
			sp.Spawn(tsGauge{Level: 100})
		}).
		AddSystems(raise)
}

func TestRecordEntityTimeSeries_TracksEachIdentifier(t *testing.T) {
	b := gaugeRecipe()
	if err := RecordEntityTimeSeries[tsGauge, tag, int](b, 1); err != nil {
		t.Fatalf("record: %v", err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.Run(3); err != nil {
		t.Fatal(err)
	}

	series, err := EntityTimeSeriesOf[tsGauge, tag, int](s)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("tracked %d identifiers, want 2 (%v)", len(series), series)
	}
	checkSamples := func(name string, want []int) {
		got := series[tag{Name: name}]
		if len(got) != len(want) {
			t.Fatalf("series %q = %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("series %q sample %d = %d, want %d", name, i, got[i], want[i])
			}
		}
	}
	checkSamples("a", []int{1, 2, 3})
	checkSamples("b", []int{11, 12, 13})
}

func TestRecordEntityTimeSeries_SamplesEveryInterval(t *testing.T) {
	b := gaugeRecipe()
	if err := RecordEntityTimeSeries[tsGauge, tag, int](b, 2); err != nil {
		t.Fatal(err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(5); err != nil {
		t.Fatal(err)
	}

	series, err := EntityTimeSeriesOf[tsGauge, tag, int](s)
	if err != nil {
		t.Fatal(err)
	}
	// sampled after steps 2 and 4
	got := series[tag{Name: "a"}]
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("series = %v, want [2 4]", got)
	}
}

func TestRecordEntityTimeSeries_ResetClears(t *testing.T) {
	b := gaugeRecipe()
	if err := RecordEntityTimeSeries[tsGauge, tag, int](b, 1); err != nil {
		t.Fatal(err)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(3); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}

	series, err := EntityTimeSeriesOf[tsGauge, tag, int](s)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 0 {
		t.Errorf("series after reset = %v, want empty", series)
	}
}

func TestRecordEntityTimeSeries_DuplicateRejected(t *testing.T) {
	b := gaugeRecipe()
	if err := RecordEntityTimeSeries[tsGauge, tag, int](b, 1); err != nil {
		t.Fatal(err)
	}
	err := RecordEntityTimeSeries[tsGauge, tag, int](b, 3)
	if !errors.Is(err, ErrDuplicateTimeSeries) {
		t.Fatalf("expected ErrDuplicateTimeSeries, got %v", err)
	}
}

func TestEntityTimeSeriesOf_NotRegistered(t *testing.T) {
	s := counterSim(t, 1)
	_, err := EntityTimeSeriesOf[tsGauge, tag, int](s)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordTimeSeries_SimulationsDoNotShareSamples(t *testing.T) {
	b := NewBuilder().
		AddEntitySpawner(spawnCounters(1)).
		AddSystems(incrementSystem())
	if err := RecordTimeSeries[counter, int](b, 1); err != nil {
		t.Fatal(err)
	}

	a, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	c, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Run(4); err != nil {
		t.Fatal(err)
	}
	series, err := TimeSeriesOf[counter, int](c)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 0 {
		t.Errorf("second simulation picked up the first one's samples: %v", series)
	}
}
