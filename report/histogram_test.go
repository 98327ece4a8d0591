package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistogram(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		bins   int
		want   []Bin
	}{
		{name: "empty", values: nil, bins: 10, want: nil},
		{name: "no bins", values: []float64{1, 2}, bins: 0, want: nil},
		{name: "identical values", values: []float64{7, 7, 7}, bins: 5, want: []Bin{{Low: 7, High: 7, Count: 3}}},
		{
			name:   "max lands in last bin",
			values: []float64{0, 5, 10},
			bins:   2,
			want:   []Bin{{Low: 0, High: 5, Count: 1}, {Low: 5, High: 10, Count: 2}},
		},
		{
			name:   "unsorted with empty middle bin",
			values: []float64{100, 0, 1, 99},
			bins:   4,
			want: []Bin{
				{Low: 0, High: 25, Count: 2},
				{Low: 25, High: 50, Count: 0},
				{Low: 50, High: 75, Count: 0},
				{Low: 75, High: 100, Count: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Histogram(tt.values, tt.bins)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Histogram mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHistogramCountsEveryValue(t *testing.T) {
	values := make([]float64, 0, 1000)
	for i := 0; i < 1000; i++ {
		values = append(values, float64(i%97)*1.3)
	}
	total := 0
	for _, b := range Histogram(values, 7) {
		total += b.Count
	}
	if total != len(values) {
		t.Errorf("expected %d values across bins, got %d", len(values), total)
	}
}
