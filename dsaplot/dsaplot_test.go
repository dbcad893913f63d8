package dsaplot

import (
	"testing"

	"github.com/dsabio/dsa/scorer"
)

func TestBuildGridSymmetric(t *testing.T) {
	s := &scorer.ScoreTable{Rows: []scorer.ScoreRow{
		{I: 0, J: 1, Score: 42},
		{I: 0, J: 2, Score: 99},
		{I: 1, J: 2, Score: 7},
	}}
	grid := buildGrid(s, 3)
	if grid.Z(1, 0) != 42 || grid.Z(0, 1) != 42 {
		t.Errorf("grid not symmetric at (0,1): %v / %v", grid.Z(1, 0), grid.Z(0, 1))
	}
	if grid.Z(0, 0) != heatmapCenter {
		t.Errorf("diagonal = %v, want %v", grid.Z(0, 0), heatmapCenter)
	}
	c, r := grid.Dims()
	if c != 3 || r != 3 {
		t.Errorf("Dims = (%d,%d), want (3,3)", c, r)
	}
}

func TestQuantileBucketsMonotonic(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3, 9, 8, 7, 6, 0}
	buckets := quantileBuckets(values, 4)
	if len(buckets) != len(values) {
		t.Fatalf("len(buckets) = %d, want %d", len(buckets), len(values))
	}
	// The lowest value must land in bucket 0, the highest in the last bucket.
	minIdx, maxIdx := 0, 0
	for i, v := range values {
		if v < values[minIdx] {
			minIdx = i
		}
		if v > values[maxIdx] {
			maxIdx = i
		}
	}
	if buckets[minIdx] != 0 {
		t.Errorf("bucket of min value = %d, want 0", buckets[minIdx])
	}
	if buckets[maxIdx] != 3 {
		t.Errorf("bucket of max value = %d, want 3", buckets[maxIdx])
	}
	for _, b := range buckets {
		if b < 0 || b >= 4 {
			t.Errorf("bucket out of range: %d", b)
		}
	}
}

func TestResidueCount(t *testing.T) {
	s := &scorer.ScoreTable{Rows: []scorer.ScoreRow{{I: 0, J: 1}, {I: 1, J: 4}, {I: 2, J: 3}}}
	if n := residueCount(s); n != 5 {
		t.Errorf("residueCount = %d, want 5", n)
	}
}

func TestReversedRainbowColorCount(t *testing.T) {
	colors := reversedRainbow{steps: 16}.Colors()
	if len(colors) != 16 {
		t.Errorf("len(Colors()) = %d, want 16", len(colors))
	}
}
