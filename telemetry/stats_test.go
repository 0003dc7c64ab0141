package telemetry

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", []float64{}, Distribution{}},
		{"single", []float64{5}, Distribution{Mean: 5, P10: 5, P50: 5, P90: 5, Max: 5}},
		{"unsorted ten", []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5},
			Distribution{Mean: 5.5, Std: 3.02765, P10: 1, P50: 5, P90: 9, Max: 10}},
		{"constant", []float64{2, 2, 2, 2}, Distribution{Mean: 2, P10: 2, P50: 2, P90: 2, Max: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			check := func(field string, got, want float64) {
				if math.Abs(got-want) > 0.001 {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			check("Mean", got.Mean, tt.want.Mean)
			check("Std", got.Std, tt.want.Std)
			check("P10", got.P10, tt.want.P10)
			check("P50", got.P50, tt.want.P50)
			check("P90", got.P90, tt.want.P90)
			check("Max", got.Max, tt.want.Max)
		})
	}
}

func TestSummarizeLeavesInputUnsorted(t *testing.T) {
	values := []float64{3, 1, 2}
	Summarize(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}
