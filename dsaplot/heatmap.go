// Package dsaplot renders the two diagnostic images a DSA run produces: the
// per-residue-pair score heatmap and the mean-distance-vs-score scatter.
package dsaplot

import (
	"github.com/dsabio/dsa/scorer"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// heatmapMin, heatmapMax and heatmapCenter fix the colour range regardless
// of the actual score distribution in a given run, so heatmaps from
// different proteins stay visually comparable.
const (
	heatmapMin    = 20.0
	heatmapMax    = 130.0
	heatmapCenter = 75.0
	paletteSteps  = 256
)

// scoreGrid adapts a length-by-length symmetric score matrix to
// plotter.GridXYZ.
type scoreGrid struct {
	length int
	scores [][]float64
}

func (g *scoreGrid) Dims() (c, r int)   { return g.length, g.length }
func (g *scoreGrid) X(c int) float64    { return float64(c) }
func (g *scoreGrid) Y(r int) float64    { return float64(r) }
func (g *scoreGrid) Z(c, r int) float64 { return g.scores[r][c] }

// buildGrid lays out every pair's score at both (i,j) and (j,i), leaving
// the diagonal at heatmapCenter.
func buildGrid(s *scorer.ScoreTable, length int) *scoreGrid {
	m := make([][]float64, length)
	for i := range m {
		m[i] = make([]float64, length)
		m[i][i] = heatmapCenter
	}
	for _, row := range s.Rows {
		m[row.I][row.J] = row.Score
		m[row.J][row.I] = row.Score
	}
	return &scoreGrid{length: length, scores: m}
}

// residueCount infers L' from the highest row/column index referenced by
// any pair, rather than taking it as a parameter: a ScoreTable's pairs
// already determine the matrix's extent.
func residueCount(s *scorer.ScoreTable) int {
	max := -1
	for _, row := range s.Rows {
		if row.J > max {
			max = row.J
		}
	}
	return max + 1
}

// Heatmap renders the residue-pair score matrix to path, coloured on the
// fixed [20,130] range centred on 75 with a reversed-rainbow ramp.
func Heatmap(s *scorer.ScoreTable, path, title string) error {
	length := residueCount(s)
	if length == 0 {
		return errors.New("dsaplot: heatmap requires at least one pair")
	}
	grid := buildGrid(s, length)

	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "dsaplot: new plot")
	}
	p.Title.Text = title

	hm := plotter.NewHeatMap(grid, reversedRainbow{steps: paletteSteps})
	hm.Min, hm.Max = heatmapMin, heatmapMax
	p.Add(hm)

	side := vg.Length(length) * vg.Millimeter
	if side < 10*vg.Centimeter {
		side = 10 * vg.Centimeter
	}
	if err := p.Save(side, side, path); err != nil {
		return errors.Wrap(err, "dsaplot: save heatmap")
	}
	return nil
}
