// Package mmcif loads and parses the mmCIF categories a DSA run needs from
// a single PDB entry: the UniProt cross-reference table, its reported
// sequence differences, the author-numbered chain scheme and the atom
// coordinates. It also classifies an entry's relationship to a UniProt
// accession (normal, substitution, chimera, delins, mismatch).
package mmcif

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ErrFetch is returned when the mmCIF download fails or responds with a
// non-2xx status.
var ErrFetch = errors.New("mmcif: fetch failed")

// ErrParse is returned when a downloaded mmCIF file is missing a category
// this package requires.
var ErrParse = errors.New("mmcif: malformed document")

const baseURL = "https://files.rcsb.org/download/"

// StructRefSeqRow is one row of _struct_ref_seq: the UniProt accession and
// alignment span claimed for one chain (strand).
type StructRefSeqRow struct {
	StrandID    string
	Accession   string
	SeqAlignBeg int
	SeqAlignEnd int
	SortIndex   int
}

// StructRefSeqDifRow is one row of _struct_ref_seq_dif describing a single
// residue difference between the author sequence and the UniProt reference.
// SeqNum and DBSeqNum are kept as strings because either may be the
// placeholder "?" (deletion/insertion marker).
type StructRefSeqDifRow struct {
	StrandID string
	SeqNum   string
	DBSeqNum string
	Details  string
}

// Cell is one author-numbered residue position in the flattened
// _pdbx_poly_seq_scheme chain list. Present is false where pdb_mon_id is
// "?", meaning the position has no coordinates.
type Cell struct {
	MonID   string
	SeqNum  string
	Present bool
}

// Entry is the parsed content of one mmCIF file, scoped to the categories
// this package consumes.
type Entry struct {
	PDBID           string
	StructRefSeq    []StructRefSeqRow
	StructRefSeqDif []StructRefSeqDifRow
	Chain           []Cell
	ChainID         []string
	AtomCoordPath   string
}

// excludedDifDetails mirrors CifData's filter on _struct_ref_seq_dif.details:
// rows with these (lower-cased) details never participate in classification
// or chain repair. The fourth entry reproduces the original's own misspelling
// of "microheterogeneity", which is why that condition never actually
// matches — classification later tests the correctly spelled word.
var excludedDifDetails = map[string]bool{
	"expression tag":     true,
	"linker":             true,
	"conflict":           true,
	"microgeterogeneity": true,
}

func buildEntry(pdbID string, doc *document) (*Entry, error) {
	strandIDs := doc.column("struct_ref_seq", "pdbx_strand_id")
	accessions := doc.column("struct_ref_seq", "pdbx_db_accession")
	begs := doc.column("struct_ref_seq", "seq_align_beg")
	ends := doc.column("struct_ref_seq", "seq_align_end")
	if len(strandIDs) == 0 {
		return nil, errors.Wrapf(ErrParse, "%s: missing _struct_ref_seq", pdbID)
	}

	pdbMonID := doc.column("pdbx_poly_seq_scheme", "pdb_mon_id")
	pdbSeqNum := doc.column("pdbx_poly_seq_scheme", "pdb_seq_num")
	hetero := doc.column("pdbx_poly_seq_scheme", "hetero")
	pdbStrandID := doc.column("pdbx_poly_seq_scheme", "pdb_strand_id")
	if len(pdbMonID) == 0 {
		return nil, errors.Wrapf(ErrParse, "%s: missing _pdbx_poly_seq_scheme", pdbID)
	}

	e := &Entry{PDBID: pdbID}

	var heteroPdbSeqNum string
	for i := range pdbMonID {
		monID, seqNum, het, chainID := pdbMonID[i], pdbSeqNum[i], hetero[i], pdbStrandID[i]
		if het == "n" {
			heteroPdbSeqNum = ""
			e.ChainID = append(e.ChainID, chainID)
			if monID != "?" {
				e.Chain = append(e.Chain, Cell{MonID: monID, SeqNum: seqNum, Present: true})
			} else {
				e.Chain = append(e.Chain, Cell{})
			}
			continue
		}
		if seqNum == heteroPdbSeqNum {
			continue
		}
		e.ChainID = append(e.ChainID, chainID)
		if monID != "?" {
			e.Chain = append(e.Chain, Cell{MonID: monID, SeqNum: seqNum, Present: true})
			heteroPdbSeqNum = seqNum
		} else {
			e.Chain = append(e.Chain, Cell{})
		}
	}

	for i, strandID := range strandIDs {
		beg, err := strconv.Atoi(begs[i])
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "%s: bad seq_align_beg %q", pdbID, begs[i])
		}
		end, err := strconv.Atoi(ends[i])
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "%s: bad seq_align_end %q", pdbID, ends[i])
		}
		sortIndex := indexOf(e.ChainID, strandID)
		if sortIndex < 0 {
			return nil, errors.Wrapf(ErrParse, "%s: strand %q absent from chain scheme", pdbID, strandID)
		}
		e.StructRefSeq = append(e.StructRefSeq, StructRefSeqRow{
			StrandID:    strandID,
			Accession:   strings.ToUpper(accessions[i]),
			SeqAlignBeg: beg,
			SeqAlignEnd: end,
			SortIndex:   sortIndex,
		})
	}
	e.SortChains()

	difStrand := doc.column("struct_ref_seq_dif", "pdbx_pdb_strand_id")
	difSeqNum := doc.column("struct_ref_seq_dif", "pdbx_auth_seq_num")
	difDBSeqNum := doc.column("struct_ref_seq_dif", "pdbx_seq_db_seq_num")
	difDetails := doc.column("struct_ref_seq_dif", "details")
	for i := range difStrand {
		details := strings.ToLower(difDetails[i])
		if excludedDifDetails[details] {
			continue
		}
		e.StructRefSeqDif = append(e.StructRefSeqDif, StructRefSeqDifRow{
			StrandID: difStrand[i],
			SeqNum:   difSeqNum[i],
			DBSeqNum: difDBSeqNum[i],
			Details:  details,
		})
	}

	return e, nil
}

// SortChains records each StructRefSeq row's first occurrence position in
// the flattened chain list as SortIndex, then reorders StructRefSeq by that
// position, mirroring CifData's second sort_index assignment (the one keyed
// against self.chainid rather than pdb_strand_id) and the sort_values call
// that follows it.
func (e *Entry) SortChains() {
	for i, row := range e.StructRefSeq {
		row.SortIndex = indexOf(e.ChainID, row.StrandID)
		e.StructRefSeq[i] = row
	}
	sort.SliceStable(e.StructRefSeq, func(i, j int) bool {
		return e.StructRefSeq[i].SortIndex < e.StructRefSeq[j].SortIndex
	})
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// Loader downloads (or reads from cache) mmCIF files and parses them into
// Entry values, writing the atom coordinate table to AtomCoordDir as a side
// effect of every load (an existing CSV for the entry is overwritten).
type Loader struct {
	PDBDir        string
	AtomCoordDir  string
	Client        *http.Client
}

// Load returns the parsed Entry for pdbID, downloading and caching the
// mmCIF file first if it is not already present under l.PDBDir.
func (l *Loader) Load(ctx context.Context, pdbID string) (*Entry, error) {
	path, err := l.ensureCIF(ctx, pdbID)
	if err != nil {
		return nil, err
	}
	data, err := readMaybeGzip(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFetch, "%s: %v", pdbID, err)
	}
	tokens, err := tokenize(data)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %v", pdbID, err)
	}
	doc, err := parseDocument(tokens)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %v", pdbID, err)
	}
	entry, err := buildEntry(strings.ToUpper(pdbID), doc)
	if err != nil {
		return nil, err
	}
	if err := l.writeAtomCoord(pdbID, doc); err != nil {
		return nil, err
	}
	entry.AtomCoordPath = filepath.Join(l.AtomCoordDir, strings.ToUpper(pdbID)+".csv")
	return entry, nil
}

func (l *Loader) ensureCIF(ctx context.Context, pdbID string) (string, error) {
	if err := os.MkdirAll(l.PDBDir, 0o755); err != nil {
		return "", errors.Wrap(err, "mmcif: create pdb dir")
	}
	path := filepath.Join(l.PDBDir, strings.ToLower(pdbID)+".cif")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if _, err := os.Stat(path + ".gz"); err == nil {
		return path + ".gz", nil
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+strings.ToUpper(pdbID)+".cif.gz", nil)
	if err != nil {
		return "", errors.Wrap(err, "mmcif: build request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrap(ErrFetch, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Wrapf(ErrFetch, "%s: HTTP %d", pdbID, resp.StatusCode)
	}
	gzPath := path + ".gz"
	f, err := os.Create(gzPath)
	if err != nil {
		return "", errors.Wrap(err, "mmcif: create cache file")
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", errors.Wrap(ErrFetch, err.Error())
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "mmcif: close cache file")
	}
	return gzPath, nil
}

func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	}
	return io.ReadAll(f)
}

// atomRow is one row of _atom_site, the fields this package persists to
// the atom coordinate cache.
type atomRow struct {
	modelNum, asymID, compID, seqID, atomID string
	x, y, z                                 string
	altID, groupPDB, insCode                string
}

// writeAtomCoord reproduces CifData's atom_coord construction: keep every
// row whose alt_id contains ".", plus the first occurrence of each
// (seq_id, atom_id) among the other rows (an empty alt_id counts as one of
// the other rows), preserving
// original row order throughout; then keep only ATOM (not HETATM) rows and
// drop the alt_id/group_PDB columns before writing the CSV cache.
func (l *Loader) writeAtomCoord(pdbID string, doc *document) error {
	modelNum := doc.column("atom_site", "pdbx_PDB_model_num")
	asymID := doc.column("atom_site", "auth_asym_id")
	compID := doc.column("atom_site", "auth_comp_id")
	seqID := doc.column("atom_site", "auth_seq_id")
	atomID := doc.column("atom_site", "auth_atom_id")
	x := doc.column("atom_site", "Cartn_x")
	y := doc.column("atom_site", "Cartn_y")
	z := doc.column("atom_site", "Cartn_z")
	altID := doc.column("atom_site", "label_alt_id")
	groupPDB := doc.column("atom_site", "group_PDB")
	insCode := doc.column("atom_site", "pdbx_PDB_ins_code")
	if len(modelNum) == 0 {
		return errors.Wrapf(ErrParse, "%s: missing _atom_site", pdbID)
	}

	rows := make([]atomRow, len(modelNum))
	for i := range rows {
		rows[i] = atomRow{
			modelNum: modelNum[i], asymID: asymID[i], compID: compID[i],
			seqID: seqID[i], atomID: atomID[i],
			x: x[i], y: y[i], z: z[i],
			altID: altID[i], groupPDB: groupPDB[i], insCode: insCode[i],
		}
	}

	seen := make(map[[2]string]bool)
	var kept []atomRow
	for _, r := range rows {
		if !strings.Contains(r.altID, ".") {
			key := [2]string{r.seqID, r.atomID}
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		kept = append(kept, r)
	}

	if err := os.MkdirAll(l.AtomCoordDir, 0o755); err != nil {
		return errors.Wrap(err, "mmcif: create atom coord dir")
	}
	path := filepath.Join(l.AtomCoordDir, strings.ToUpper(pdbID)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "mmcif: create atom coord file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model_num", "asym_id", "comp_id", "seq_id", "atom_id", "Cartn_x", "Cartn_y", "Cartn_z", "ins_code"}); err != nil {
		return errors.Wrap(err, "mmcif: write header")
	}
	for _, r := range kept {
		if r.groupPDB != "ATOM" {
			continue
		}
		if err := w.Write([]string{r.modelNum, r.asymID, r.compID, r.seqID, r.atomID, r.x, r.y, r.z, r.insCode}); err != nil {
			return errors.Wrap(err, "mmcif: write row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "mmcif: flush")
}
