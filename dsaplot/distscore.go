package dsaplot

import (
	"image/color"
	"sort"

	"github.com/dsabio/dsa/scorer"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// distScoreBuckets is the number of score quantile buckets the scatter
// colours points by.
const distScoreBuckets = 4

var bucketColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

// DistanceScore renders a scatter of mean distance (x) against score (y),
// one point per residue pair, coloured by which score quantile the point
// falls into. title and uniprotID are combined into the plot's title text.
func DistanceScore(s *scorer.ScoreTable, path, title, uniprotID string) error {
	if len(s.Rows) == 0 {
		return errors.New("dsaplot: distance/score scatter requires at least one pair")
	}
	pts := make(plotter.XYs, len(s.Rows))
	scores := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		pts[i] = plotter.XY{X: row.Mean, Y: row.Score}
		scores[i] = row.Score
	}
	buckets := quantileBuckets(scores, distScoreBuckets)

	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "dsaplot: new plot")
	}
	p.Title.Text = title + " (" + uniprotID + ")"
	p.X.Label.Text = "mean distance (Å)"
	p.Y.Label.Text = "score"

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "dsaplot: new scatter")
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  bucketColors[buckets[i]],
			Radius: vg.Points(2),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(sc)

	if err := p.Save(15*vg.Centimeter, 15*vg.Centimeter, path); err != nil {
		return errors.Wrap(err, "dsaplot: save scatter")
	}
	return nil
}

// quantileBuckets assigns each value in values to one of n equal-count
// buckets (0 = lowest), based on its rank among values.
func quantileBuckets(values []float64, n int) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	buckets := make([]int, len(values))
	for rank, idx := range order {
		bucket := rank * n / len(values)
		if bucket >= n {
			bucket = n - 1
		}
		buckets[idx] = bucket
	}
	return buckets
}
