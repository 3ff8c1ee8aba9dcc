package quality

import (
	"math"
	"testing"
)

func TestWeightedOverallInvariant(t *testing.T) {
	for code := 0; code <= 100; code += 7 {
		for gameplay := 0; gameplay <= 100; gameplay += 11 {
			for visual := 0; visual <= 100; visual += 13 {
				got := WeightedOverall(code, gameplay, visual)
				want := int(math.Round(float64(code)*0.4 + float64(gameplay)*0.35 + float64(visual)*0.25))
				if got != want {
					t.Fatalf("WeightedOverall(%d,%d,%d) = %d, want %d", code, gameplay, visual, got, want)
				}
				if got < 0 || got > 100 {
					t.Fatalf("WeightedOverall(%d,%d,%d) = %d, out of [0,100]", code, gameplay, visual, got)
				}
			}
		}
	}
}

func TestWeightedOverallClampsInputs(t *testing.T) {
	if got := WeightedOverall(150, -20, 100); got != WeightedOverall(100, 0, 100) {
		t.Errorf("out-of-range sub-scores were not clamped: %d", got)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{57, 57},
		{100, 100},
		{140, 100},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
