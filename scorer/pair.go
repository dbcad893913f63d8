package scorer

import "fmt"

// PairRow is one residue-pair row: the distance to every surviving chain,
// keyed by column name in CoordTable.Order.
type PairRow struct {
	Key        string
	I, J       int
	RefI, RefJ string
	Distance   map[string]float64
}

// PairTable is every unordered residue pair (i<j) over a CoordTable's
// retained rows, in lexicographic order.
type PairTable struct {
	Reference []string
	Order     []string
	Rows      []PairRow
}

// Pairs enumerates all unordered pairs i<j over c's retained rows and
// computes each surviving chain's Cα–Cα distance for every pair. Key is
// built from c.Index (the row's pre-coordinate-resolution position), not
// from i/j, so it matches the original pipeline's pair numbering even when
// coordinate resolution has dropped rows out of sequence.
func Pairs(c *CoordTable) *PairTable {
	n := len(c.Reference)
	index := c.Index
	if index == nil {
		index = make([]int, n)
		for i := range index {
			index[i] = i
		}
	}
	t := &PairTable{
		Reference: c.Reference,
		Order:     append([]string(nil), c.Order...),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			row := PairRow{
				Key:      fmt.Sprintf("%d, %d", index[i]+1, index[j]+1),
				I:        i,
				J:        j,
				RefI:     c.Reference[i],
				RefJ:     c.Reference[j],
				Distance: make(map[string]float64, len(c.Order)),
			}
			for _, name := range c.Order {
				chain := c.Chains[name]
				row.Distance[name] = Distance(chain.XYZ[i], chain.XYZ[j])
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}
