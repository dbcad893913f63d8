package scorer

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CisReport is the cis sub-analysis over a PairTable: which residue pairs
// are in a cis (short Cα–Cα distance) conformation in some or all chains.
type CisReport struct {
	Threshold    float64
	CisDistMean  float64
	CisDistStd   float64
	CisScoreMean float64
	CisNum       int
	Mix          int
	PairKeys     []string
	PairTotal    int
}

// Cis flags every pair row where at least one chain's distance is at or
// below threshold, then reports how consistently cis that row is across
// chains: all_cis rows (cis in every chain) drive CisNum and PairKeys,
// mixed rows (cis in some but not all) drive Mix.
func Cis(p *PairTable, threshold float64) *CisReport {
	var cisRows []int
	seen := make(map[int]bool)
	for idx, row := range p.Rows {
		for _, name := range p.Order {
			if row.Distance[name] <= threshold {
				if !seen[idx] {
					seen[idx] = true
					cisRows = append(cisRows, idx)
				}
				break
			}
		}
	}
	if len(cisRows) == 0 {
		return &CisReport{Threshold: threshold}
	}
	sort.Ints(cisRows)

	type rowStat struct {
		key              string
		mean, score      float64
		cisCnt, transCnt int
	}
	stats := make([]rowStat, len(cisRows))
	for i, idx := range cisRows {
		row := p.Rows[idx]
		values := make([]float64, 0, len(p.Order))
		cisCnt, transCnt := 0, 0
		for _, name := range p.Order {
			d := row.Distance[name]
			values = append(values, d)
			if d <= threshold {
				cisCnt++
			} else {
				transCnt++
			}
		}
		mean, std := populationMeanStd(values)
		if std == 0 {
			std = stdFloor
		}
		stats[i] = rowStat{key: row.Key, mean: mean, score: mean / std, cisCnt: cisCnt, transCnt: transCnt}
	}

	means := make([]float64, len(stats))
	scores := make([]float64, len(stats))
	var allCisKeys []string
	mix := 0
	for i, s := range stats {
		means[i] = s.mean
		scores[i] = s.score
		if s.cisCnt >= 1 && s.transCnt >= 1 {
			mix++
		}
		if s.transCnt == 0 {
			allCisKeys = append(allCisKeys, s.key)
		}
	}

	distStd := 0.0
	if len(means) > 1 {
		distStd = stat.StdDev(means, nil)
	}

	report := &CisReport{
		Threshold:    threshold,
		CisDistMean:  stat.Mean(means, nil),
		CisDistStd:   distStd,
		CisScoreMean: stat.Mean(scores, nil),
		CisNum:       len(allCisKeys),
		Mix:          mix,
		PairTotal:    len(allCisKeys),
	}
	if len(allCisKeys) > 0 {
		limit := 20
		if len(allCisKeys) < limit {
			limit = len(allCisKeys)
		}
		report.PairKeys = append([]string(nil), allCisKeys[:limit]...)
	}
	return report
}
