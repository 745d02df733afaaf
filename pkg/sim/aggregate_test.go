package sim

import "testing"

func TestSum(t *testing.T) {
	if got := Sum([]int{1, 2, 3, 4}); got != 10 {
		t.Errorf("Sum = %d, want 10", got)
	}
	if got := Sum([]float64{0.5, 0.25}); got != 0.75 {
		t.Errorf("Sum = %v, want 0.75", got)
	}
	if got := Sum([]int(nil)); got != 0 {
		t.Errorf("Sum of empty = %d, want 0", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]int{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
	if got := Mean([]float64{2}); got != 2 {
		t.Errorf("Mean of one = %v, want 2", got)
	}
}

func TestMinMax(t *testing.T) {
	values := []float64{3.1, -2.5, 7.9, 0}
	if got := Min(values); got != -2.5 {
		t.Errorf("Min = %v, want -2.5", got)
	}
	if got := Max(values); got != 7.9 {
		t.Errorf("Max = %v, want 7.9", got)
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]int{5, 1, 3}); got != 3 {
		t.Errorf("odd median = %d, want 3", got)
	}
	// upper-middle element for even counts, no interpolation
	if got := Median([]int{4, 1, 3, 2}); got != 3 {
		t.Errorf("even median = %d, want 3", got)
	}
}

func TestPercentile(t *testing.T) {
	values := make([]int, 100)
	for i := range values {
		values[i] = i
	}
	if got := Percentile(values, 10); got != 10 {
		t.Errorf("p10 = %d, want 10", got)
	}
	if got := Percentile(values, 0); got != 0 {
		t.Errorf("p0 = %d, want 0", got)
	}
	if got := Percentile(values, 100); got != 99 {
		t.Errorf("p100 = %d, want 99", got)
	}
}

func TestAggregate_EmptyPanics(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s on empty values must panic", name)
			}
		}()
		fn()
	}
	assertPanics("Mean", func() { Mean([]int{}) })
	assertPanics("Median", func() { Median([]int{}) })
	assertPanics("Percentile", func() { Percentile([]int{}, 50) })
}
