package scorer

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dsabio/dsa/ensemble"
	"github.com/pkg/errors"
)

// ErrMissingCoordinate names the case where a chain's persisted atom table
// has no Cα for a retained residue. ResolveCoordinates does not return it:
// it drops such rows instead.
var ErrMissingCoordinate = errors.New("scorer: missing coordinate")

// ChainCoords is one retained chain's Cα coordinates, one entry per
// CoordTable row.
type ChainCoords struct {
	ResidueCode []string
	XYZ         [][3]float64
}

// CoordTable is the ensemble matrix with every residue resolved to its Cα
// coordinate in every surviving chain; rows missing a coordinate in any
// chain have already been dropped.
type CoordTable struct {
	Reference []string
	Chains    map[string]*ChainCoords
	Order     []string

	// Index is each retained row's position in the ensemble matrix as it
	// stood before coordinate resolution dropped any rows. Pair keys are
	// built from this, not from the post-drop row position, matching the
	// original pipeline's pair numbering (which never reindexes after its
	// coordinate dropna).
	Index []int
}

type atomRecord struct {
	seqID     string
	compID    string
	x, y, z   float64
}

// ResolveCoordinates loads each surviving chain's persisted atom table and
// resolves every retained matrix row to its Cα coordinate, dropping rows
// where any chain lacks one.
func ResolveCoordinates(m *ensemble.Matrix, atomCoordDir string) (*CoordTable, error) {
	byPDB := make(map[string][]string)
	for _, name := range m.Order {
		pdbID, _, ok := splitColumn(name)
		if !ok {
			return nil, errors.Errorf("scorer: malformed column name %q", name)
		}
		byPDB[pdbID] = append(byPDB[pdbID], name)
	}

	chainCA := make(map[string]map[string]atomRecord, len(m.Order)) // column -> seqID -> record
	for pdbID := range byPDB {
		records, err := readAtomCoord(filepath.Join(atomCoordDir, pdbID+".csv"))
		if err != nil {
			return nil, errors.Wrapf(err, "scorer: %s", pdbID)
		}
		for _, name := range byPDB[pdbID] {
			_, strand, _ := splitColumn(name)
			byStrand := make(map[string]atomRecord)
			for _, r := range records {
				if r.asymID != strand || r.atomID != "CA" {
					continue
				}
				if _, dup := byStrand[r.seqID]; dup {
					continue
				}
				byStrand[r.seqID] = atomRecord{seqID: r.seqID, compID: r.compID, x: r.x, y: r.y, z: r.z}
			}
			chainCA[name] = byStrand
		}
	}

	L := len(m.Reference)
	var keepRows []int
	rowCoord := make(map[string][]atomRecord, len(m.Order))
	for _, name := range m.Order {
		rowCoord[name] = make([]atomRecord, L)
	}
	for i := 0; i < L; i++ {
		ok := true
		for _, name := range m.Order {
			cell := m.Columns[name][i]
			if !cell.Present {
				ok = false
				break
			}
			rec, found := chainCA[name][cell.SeqNum]
			if !found {
				ok = false
				break
			}
			rowCoord[name][i] = rec
		}
		if ok {
			keepRows = append(keepRows, i)
		}
	}

	table := &CoordTable{
		Reference: make([]string, len(keepRows)),
		Chains:    make(map[string]*ChainCoords, len(m.Order)),
		Order:     append([]string(nil), m.Order...),
		Index:     append([]int(nil), keepRows...),
	}
	for i, row := range keepRows {
		table.Reference[i] = m.Reference[row]
	}
	for _, name := range m.Order {
		cc := &ChainCoords{
			ResidueCode: make([]string, len(keepRows)),
			XYZ:         make([][3]float64, len(keepRows)),
		}
		for i, row := range keepRows {
			rec := rowCoord[name][row]
			cc.ResidueCode[i] = rec.compID
			cc.XYZ[i] = [3]float64{rec.x, rec.y, rec.z}
		}
		table.Chains[name] = cc
	}
	return table, nil
}

// splitColumn splits a "{PDBID} {STRAND}" column label.
func splitColumn(name string) (pdbID, strand string, ok bool) {
	i := strings.IndexByte(name, ' ')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

type csvRow struct {
	asymID, compID, seqID, atomID string
	x, y, z                       float64
}

func readAtomCoord(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open atom coord cache")
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	var rows []csvRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		x, err := strconv.ParseFloat(rec[idx["Cartn_x"]], 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse Cartn_x")
		}
		y, err := strconv.ParseFloat(rec[idx["Cartn_y"]], 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse Cartn_y")
		}
		z, err := strconv.ParseFloat(rec[idx["Cartn_z"]], 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse Cartn_z")
		}
		rows = append(rows, csvRow{
			asymID: rec[idx["asym_id"]],
			compID: rec[idx["comp_id"]],
			seqID:  rec[idx["seq_id"]],
			atomID: rec[idx["atom_id"]],
			x:      x, y: y, z: z,
		})
	}
	return rows, nil
}
