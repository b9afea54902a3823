package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("empty mean: got=%v want=0", got)
	}
	if got := Mean([]float64{2, 4, 6}); !almostEqual(got, 4) {
		t.Fatalf("mean: got=%v want=4", got)
	}
}

func TestStd(t *testing.T) {
	if got := Std([]float64{5}); got != 0 {
		t.Fatalf("single value std: got=%v want=0", got)
	}
	// Population std of {2,4,4,4,5,5,7,9} is exactly 2.
	if got := Std([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !almostEqual(got, 2) {
		t.Fatalf("std: got=%v want=2", got)
	}
	if got := Std([]float64{3, 3, 3}); got != 0 {
		t.Fatalf("constant series std: got=%v want=0", got)
	}
}

func TestMedian(t *testing.T) {
	if got := Median(nil); got != 0 {
		t.Fatalf("empty median: got=%v want=0", got)
	}
	if got := Median([]float64{9, 1, 5}); !almostEqual(got, 5) {
		t.Fatalf("odd median: got=%v want=5", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); !almostEqual(got, 2.5) {
		t.Fatalf("even median: got=%v want=2.5", got)
	}
	// Input must not be reordered.
	xs := []float64{9, 1, 5}
	Median(xs)
	if xs[0] != 9 || xs[1] != 1 || xs[2] != 5 {
		t.Fatalf("median mutated input: %v", xs)
	}
}

func TestFitOLS(t *testing.T) {
	// Exact line y = 3 + 2x.
	xs := []float64{0, 1, 2, 3}
	ys := []float64{3, 5, 7, 9}
	l := FitOLS(xs, ys)
	if !almostEqual(l.Slope, 2) || !almostEqual(l.Intercept, 3) {
		t.Fatalf("fit: got slope=%v intercept=%v want 2, 3", l.Slope, l.Intercept)
	}
	if got := l.At(10); !almostEqual(got, 23) {
		t.Fatalf("At(10): got=%v want=23", got)
	}

	res := Residuals(l, xs, ys)
	for i, r := range res {
		if !almostEqual(r, 0) {
			t.Fatalf("residual[%d]: got=%v want=0", i, r)
		}
	}

	// Degenerate inputs fall back to the mean of y.
	flat := FitOLS([]float64{5, 5, 5}, []float64{1, 2, 3})
	if flat.Slope != 0 || !almostEqual(flat.Intercept, 2) {
		t.Fatalf("zero x variance: got=%+v want slope=0 intercept=2", flat)
	}
	single := FitOLS([]float64{1}, []float64{7})
	if single.Slope != 0 || !almostEqual(single.Intercept, 7) {
		t.Fatalf("single point: got=%+v", single)
	}
}

func TestCorr(t *testing.T) {
	if got := Corr([]float64{1, 2, 3}, []float64{2, 4, 6}); !almostEqual(got, 1) {
		t.Fatalf("perfect positive: got=%v want=1", got)
	}
	if got := Corr([]float64{1, 2, 3}, []float64{6, 4, 2}); !almostEqual(got, -1) {
		t.Fatalf("perfect negative: got=%v want=-1", got)
	}
	if got := Corr([]float64{1, 2, 3}, []float64{5, 5, 5}); got != 0 {
		t.Fatalf("zero variance: got=%v want=0", got)
	}
	if got := Corr([]float64{1}, []float64{2}); got != 0 {
		t.Fatalf("too short: got=%v want=0", got)
	}
}
