// Package ensemble assembles per-chain residue vectors into a single
// reference-indexed matrix and trims it down to the rows and columns that
// are usable for scoring: sufficient per-chain coverage, no missing
// coordinates, and chain numbering realigned to the reference where a
// constant offset explains an apparent mismatch.
package ensemble

import (
	"github.com/dsabio/dsa/chainbuilder"
	"github.com/pkg/errors"
)

// ErrAlignmentFailure names the case where a chain disagrees with the
// reference and no offset in the scan window recovers it. Trim neither
// returns nor stores this value: it drops the chain and lists it in its
// Dropped result with the reason "sequence alignment failure".
var ErrAlignmentFailure = errors.New("ensemble: sequence alignment failure")

// offsetWindow and matchThreshold are the tuning constants of the offset
// recovery step: the scan order is 1, -1, 2, -2, ..., offsetWindow,
// -offsetWindow, and the first shift whose match count exceeds
// matchThreshold is accepted.
const (
	offsetWindow   = 49
	matchThreshold = 10
)

// Cell is one residue position in an ensemble column: present (with a
// residue code and author sequence number) or a gap.
type Cell = chainbuilder.Cell

// Matrix is the trimmed, reference-indexed ensemble: every column has the
// same length as Reference, and Order gives the surviving columns'
// insertion order.
type Matrix struct {
	Reference []string
	Columns   map[string][]Cell
	Order     []string
}

// Dropped records a column removed from the ensemble and why.
type Dropped struct {
	Column string
	Reason string
}

// Trim implements the five-step EnsembleTrimmer: coverage filter,
// reference deduplication (used only to decide which chains need offset
// testing), per-chain offset recovery, a second coverage filter, and
// pdb-seq-num deduplication. ref and columns are the full, unfiltered
// per-residue table; columns not named in order are ignored.
func Trim(ref []string, columns map[string][]Cell, order []string, seqRatio float64) (*Matrix, []Dropped) {
	var dropped []Dropped

	working := make(map[string][]Cell, len(order))
	names := append([]string(nil), order...)
	for _, name := range names {
		working[name] = append([]Cell(nil), columns[name]...)
	}

	// Step 1, computed against a scratch copy: determine which columns
	// currently meet the coverage ratio, and which rows are fully present
	// across those columns. This reduced, reference-deduplicated view is
	// used only to flag which chains disagree with the reference; it is
	// never the basis for the final matrix.
	survivors := coverageFilterNames(ref, names, working, seqRatio)
	cleanRows := allPresentRows(ref, survivors, working)
	dedupRows := dedupByValue(ref, cleanRows)

	for _, name := range survivors {
		col := working[name]
		mismatched := false
		for _, row := range dedupRows {
			c := col[row]
			if c.Present && c.MonID != ref[row] {
				mismatched = true
				break
			}
		}
		if !mismatched {
			continue
		}
		shift, ok := recoverOffset(ref, col)
		if !ok {
			dropped = append(dropped, Dropped{Column: name, Reason: "sequence alignment failure"})
			delete(working, name)
			continue
		}
		if shift != 0 {
			working[name] = shiftCells(col, shift, len(ref))
		}
	}
	names = survivingNames(names, working)

	// Step 4: re-run the coverage filter, now against the post-shift,
	// post-drop full-length columns.
	names = coverageFilterNames(ref, names, working, seqRatio)
	rows := allPresentRows(ref, names, working)

	refOut, colsOut := project(ref, names, working, rows)

	// Step 5: pdb-seq-num deduplication, union across surviving columns.
	keep := seqNumDedupRows(names, colsOut, len(refOut))
	refOut, colsOut = project(refOut, names, colsOut, keep)

	return &Matrix{Reference: refOut, Columns: colsOut, Order: names}, dropped
}

// coverageFilterNames keeps the columns whose present-cell ratio (against
// the current full row count) is at least seqRatio percent.
func coverageFilterNames(ref []string, names []string, cols map[string][]Cell, seqRatio float64) []string {
	total := len(ref)
	var out []string
	for _, name := range names {
		col := cols[name]
		present := 0
		for _, c := range col {
			if c.Present {
				present++
			}
		}
		coverage := float64(present) / float64(total) * 100
		if coverage >= seqRatio {
			out = append(out, name)
		}
	}
	return out
}

// allPresentRows returns, in order, the row indices where every named
// column (and the reference, which is never missing) is present.
func allPresentRows(ref []string, names []string, cols map[string][]Cell) []int {
	var rows []int
	for i := range ref {
		ok := true
		for _, name := range names {
			if !cols[name][i].Present {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return rows
}

// dedupByValue keeps the first row, among the given row indices, for each
// distinct reference value.
func dedupByValue(ref []string, rows []int) []int {
	seen := make(map[string]bool, len(rows))
	var out []int
	for _, row := range rows {
		v := ref[row]
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, row)
	}
	return out
}

// survivingNames filters names down to the keys still present in cols,
// preserving order.
func survivingNames(names []string, cols map[string][]Cell) []string {
	var out []string
	for _, name := range names {
		if _, ok := cols[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// project selects rows from ref and every named column in cols, returning
// freshly allocated slices.
func project(ref []string, names []string, cols map[string][]Cell, rows []int) ([]string, map[string][]Cell) {
	refOut := make([]string, len(rows))
	for i, row := range rows {
		refOut[i] = ref[row]
	}
	colsOut := make(map[string][]Cell, len(names))
	for _, name := range names {
		src := cols[name]
		out := make([]Cell, len(rows))
		for i, row := range rows {
			out[i] = src[row]
		}
		colsOut[name] = out
	}
	return refOut, colsOut
}

// seqNumDedupRows returns, in order, the row indices to keep: a row is
// dropped if any column's present cell repeats a pdb_seq_num already seen
// earlier in that same column.
func seqNumDedupRows(names []string, cols map[string][]Cell, rowCount int) []int {
	drop := make(map[int]bool)
	for _, name := range names {
		seen := make(map[string]bool)
		for i, c := range cols[name] {
			if !c.Present {
				continue
			}
			if seen[c.SeqNum] {
				drop[i] = true
				continue
			}
			seen[c.SeqNum] = true
		}
	}
	var keep []int
	for i := 0; i < rowCount; i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	return keep
}

// shiftCells reproduces pandas Series.shift(n): position i takes the value
// that was at position i-n, with positions outside [0, len) treated as a
// gap.
func shiftCells(col []Cell, n, length int) []Cell {
	out := make([]Cell, length)
	for i := 0; i < length; i++ {
		src := i - n
		if src >= 0 && src < len(col) {
			out[i] = col[src]
		}
	}
	return out
}

// matchesCount counts, over ref and col shifted by n, how many rows agree
// after dropping rows where the shifted column has no value and
// deduplicating by reference value (keeping the first occurrence), exactly
// as the reference offset-recovery check specifies.
func matchesCount(ref []string, col []Cell, n int) int {
	shifted := shiftCells(col, n, len(ref))
	seen := make(map[string]bool, len(ref))
	count := 0
	for i, refVal := range ref {
		c := shifted[i]
		if !c.Present {
			continue
		}
		if seen[refVal] {
			continue
		}
		seen[refVal] = true
		if c.MonID == refVal {
			count++
		}
	}
	return count
}

// recoverOffset scans the fixed offset window looking for a shift that
// brings col into agreement with ref. Shift 0 is tried first: a chain
// flagged as mismatched against the reduced, deduplicated comparison set
// may still agree once compared in full, in which case no shift is needed.
func recoverOffset(ref []string, col []Cell) (shift int, ok bool) {
	if matchesCount(ref, col, 0) > matchThreshold {
		return 0, true
	}
	for k := 1; k <= offsetWindow; k++ {
		if matchesCount(ref, col, k) > matchThreshold {
			return k, true
		}
		if matchesCount(ref, col, -k) > matchThreshold {
			return -k, true
		}
	}
	return 0, false
}
