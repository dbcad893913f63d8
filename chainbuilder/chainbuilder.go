// Package chainbuilder extracts the reference-indexed residue vector for a
// single PDB chain from a parsed mmCIF entry, applying the deletion,
// insertion and delins corrections its struct_ref_seq_dif descriptors call
// for.
package chainbuilder

import (
	"strconv"

	"github.com/dsabio/dsa/mmcif"
	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when a struct_ref_seq row's alignment span does
// not fit within the entry's flattened chain list.
var ErrOutOfRange = errors.New("chainbuilder: alignment span out of range")

// Cell is one position in a built chain: either a present residue (MonID +
// author sequence number) or a gap.
type Cell = mmcif.Cell

// Chain is the ordered, reference-aligned residue vector for one PDB chain,
// after deletion/insertion/delins repair.
type Chain []Cell

// descriptor is a working copy of one struct_ref_seq_dif row, consumed as
// repair stages identify and act on it.
type descriptor struct {
	seqNum, dbSeqNum string
}

// Build slices the reference-indexed span for row out of e's flattened
// chain list and repairs it in the fixed order deletion, insertion,
// delins-by-seq-num, delins-by-db-seq-num.
func Build(e *mmcif.Entry, row mmcif.StructRefSeqRow) (Chain, error) {
	begin := row.SortIndex + row.SeqAlignBeg - 1
	end := row.SortIndex + row.SeqAlignEnd
	if begin < 0 || end > len(e.Chain) || begin > end {
		return nil, errors.Wrapf(ErrOutOfRange, "strand %s: [%d:%d] outside [0:%d]", row.StrandID, begin, end, len(e.Chain))
	}
	chain := make(Chain, end-begin)
	copy(chain, e.Chain[begin:end])

	var descs []descriptor
	for _, d := range e.StructRefSeqDif {
		if d.StrandID == row.StrandID {
			descs = append(descs, descriptor{seqNum: d.SeqNum, dbSeqNum: d.DBSeqNum})
		}
	}
	if len(descs) == 0 {
		return chain, nil
	}

	chain, descs = repairDeletions(chain, descs)
	chain, descs = repairInsertions(chain, descs)
	chain, descs = repairDelinsBySeqNum(chain, descs)
	chain, _ = repairDelinsByDBSeqNum(chain, descs)
	return chain, nil
}

// seqNumOf returns the numeric pdb_seq_num of a present cell, or false for
// a gap.
func seqNumOf(c Cell) (int, bool) {
	if !c.Present {
		return 0, false
	}
	n, err := strconv.Atoi(c.SeqNum)
	if err != nil {
		return 0, false
	}
	return n, true
}

// repairDeletions implements spec step 1: every descriptor with
// seq_num == "?" is consumed, then the stride between consecutive present
// cells' pdb_seq_num is computed; any stride != 1 denotes a gap of that
// size, filled with null placeholders at the corresponding position.
func repairDeletions(chain Chain, descs []descriptor) (Chain, []descriptor) {
	var kept []descriptor
	found := false
	for _, d := range descs {
		if d.seqNum == "?" {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return chain, descs
	}

	// The stride is a literal position-to-position difference, not a
	// last-present-to-next-present one: a gap already marked by a null
	// cell breaks the pair and contributes no stride, matching the
	// underlying numeric diff having no defined value across a null.
	var out Chain
	for i, c := range chain {
		if i > 0 {
			prevN, prevOK := seqNumOf(chain[i-1])
			curN, curOK := seqNumOf(c)
			if prevOK && curOK {
				if stride := curN - prevN; stride != 1 {
					for k := 0; k < stride; k++ {
						out = append(out, Cell{})
					}
				}
			}
		}
		out = append(out, c)
	}
	return out, kept
}

// repairInsertions implements spec step 2: every descriptor with
// db_seq_num == "?" removes the slice entry whose pdb_seq_num matches the
// descriptor's seq_num and is itself consumed.
func repairInsertions(chain Chain, descs []descriptor) (Chain, []descriptor) {
	var kept []descriptor
	var pending []string
	for _, d := range descs {
		if d.dbSeqNum == "?" {
			pending = append(pending, d.seqNum)
			continue
		}
		kept = append(kept, d)
	}
	if len(pending) == 0 {
		return chain, descs
	}

	var out Chain
	for _, c := range chain {
		if c.Present {
			if i := indexOf(pending, c.SeqNum); i >= 0 {
				pending = append(pending[:i], pending[i+1:]...)
				continue
			}
		}
		out = append(out, c)
	}
	return out, kept
}

// repairDelinsBySeqNum implements spec step 3: for descriptors sharing a
// duplicated seq_num, insert (count-1) null placeholders immediately after
// the slice entry whose pdb_seq_num equals seq_num.
func repairDelinsBySeqNum(chain Chain, descs []descriptor) (Chain, []descriptor) {
	counts := make(map[string]int)
	for _, d := range descs {
		counts[d.seqNum]++
	}
	var dup []string
	seenDup := make(map[string]bool)
	var kept []descriptor
	for _, d := range descs {
		if counts[d.seqNum] > 1 {
			if !seenDup[d.seqNum] {
				dup = append(dup, d.seqNum)
				seenDup[d.seqNum] = true
			}
			continue
		}
		kept = append(kept, d)
	}
	if len(dup) == 0 {
		return chain, descs
	}

	out := make(Chain, len(chain))
	copy(out, chain)
	for _, seqNum := range dup {
		extra := counts[seqNum] - 1
		pos := -1
		for i, c := range out {
			if c.Present && c.SeqNum == seqNum {
				pos = i
				break
			}
		}
		if pos < 0 {
			continue
		}
		insert := make(Chain, extra)
		tail := append(insert, out[pos+1:]...)
		out = append(out[:pos+1], tail...)
	}
	return out, kept
}

// repairDelinsByDBSeqNum implements spec step 4: for descriptors sharing a
// duplicated db_seq_num, every occurrence after the first in each group is
// treated as a pseudo-insertion and its matching slice entry is removed.
func repairDelinsByDBSeqNum(chain Chain, descs []descriptor) (Chain, []descriptor) {
	counts := make(map[string]int)
	for _, d := range descs {
		counts[d.dbSeqNum]++
	}
	seenInGroup := make(map[string]int)
	var pending []string
	var kept []descriptor
	for _, d := range descs {
		if counts[d.dbSeqNum] > 1 {
			seenInGroup[d.dbSeqNum]++
			if seenInGroup[d.dbSeqNum] > 1 {
				pending = append(pending, d.seqNum)
			}
			continue
		}
		kept = append(kept, d)
	}
	if len(pending) == 0 {
		return chain, descs
	}

	var out Chain
	for _, c := range chain {
		if c.Present {
			if i := indexOf(pending, c.SeqNum); i >= 0 {
				pending = append(pending[:i], pending[i+1:]...)
				continue
			}
		}
		out = append(out, c)
	}
	return out, kept
}

func indexOf(ss []string, v string) int {
	for i, s := range ss {
		if s == v {
			return i
		}
	}
	return -1
}
