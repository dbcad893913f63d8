package scorer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// stdFloor replaces a zero population standard deviation: every chain
// agreeing exactly on a pair's distance must not produce an infinite score.
const stdFloor = 1e-4

// ScoreRow is one residue pair's across-ensemble distance statistics.
type ScoreRow struct {
	Key        string
	I, J       int
	RefI, RefJ string
	Mean       float64
	Std        float64
	Score      float64
}

// ScoreTable is the per-pair mean/std/score table derived from a PairTable.
type ScoreTable struct {
	Rows []ScoreRow
}

// Score computes, for every pair row, the across-chain mean and population
// standard deviation of its distances (floored at stdFloor) and their
// ratio.
func Score(p *PairTable) *ScoreTable {
	s := &ScoreTable{Rows: make([]ScoreRow, len(p.Rows))}
	for idx, row := range p.Rows {
		values := make([]float64, 0, len(p.Order))
		for _, name := range p.Order {
			values = append(values, row.Distance[name])
		}
		mean, std := populationMeanStd(values)
		if std == 0 {
			std = stdFloor
		}
		s.Rows[idx] = ScoreRow{
			Key: row.Key, I: row.I, J: row.J, RefI: row.RefI, RefJ: row.RefJ,
			Mean: mean, Std: std, Score: mean / std,
		}
	}
	return s
}

// populationMeanStd returns the arithmetic mean and the population (ddof=0)
// standard deviation of values.
func populationMeanStd(values []float64) (mean, std float64) {
	mean = stat.Mean(values, nil)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	std = math.Sqrt(sumSq / float64(len(values)))
	return mean, std
}

// Summary is the score-table-level aggregate reported alongside result.json.
type Summary struct {
	TotalPairs   int
	MeanScore    float64
	StdScore     float64
	MaxScore     float64
	MinScore     float64
	MeanDistance float64
	MeanStd      float64
}

// Summarize reduces a ScoreTable to its reported aggregate statistics;
// StdScore is a sample standard deviation (ddof=1), matching the summary
// statistics convention used everywhere outside the per-pair score itself.
func Summarize(s *ScoreTable) Summary {
	n := len(s.Rows)
	if n == 0 {
		return Summary{}
	}
	scores := make([]float64, n)
	means := make([]float64, n)
	stds := make([]float64, n)
	for i, row := range s.Rows {
		scores[i] = row.Score
		means[i] = row.Mean
		stds[i] = row.Std
	}
	return Summary{
		TotalPairs:   n,
		MeanScore:    stat.Mean(scores, nil),
		StdScore:     stat.StdDev(scores, nil),
		MaxScore:     floats.Max(scores),
		MinScore:     floats.Min(scores),
		MeanDistance: stat.Mean(means, nil),
		MeanStd:      stat.Mean(stds, nil),
	}
}
