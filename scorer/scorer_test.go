package scorer

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsabio/dsa/ensemble"
)

func TestDistanceSymmetryAndZero(t *testing.T) {
	a := [3]float64{1.111, 2.222, 3.333}
	b := [3]float64{4.444, 5.555, 6.666}
	if d := Distance(a, a); d != 0 {
		t.Errorf("Distance(a, a) = %v, want 0", d)
	}
	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance not symmetric: %v vs %v", Distance(a, b), Distance(b, a))
	}
	if Distance(a, b) < 0 {
		t.Errorf("Distance negative: %v", Distance(a, b))
	}
}

func TestDistanceReproducible(t *testing.T) {
	a := [3]float64{1.0005, 2.0005, 3.0005}
	b := [3]float64{4.0, 5.0, 6.0}
	d1 := Distance(a, b)
	d2 := Distance(a, b)
	if d1 != d2 {
		t.Errorf("Distance not bit-identical across calls: %v vs %v", d1, d2)
	}
}

func buildCoordTable() *CoordTable {
	ref := []string{"ALA", "CYS", "ASP", "GLU"}
	chainA := &ChainCoords{
		ResidueCode: ref,
		XYZ: [][3]float64{
			{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0},
		},
	}
	chainB := &ChainCoords{
		ResidueCode: ref,
		XYZ: [][3]float64{
			{0, 0, 0}, {1.1, 0, 0}, {2.2, 0, 0}, {3.3, 0, 0},
		},
	}
	return &CoordTable{
		Reference: ref,
		Order:     []string{"1ABC A", "1ABC B"},
		Chains:    map[string]*ChainCoords{"1ABC A": chainA, "1ABC B": chainB},
	}
}

func TestPairsCount(t *testing.T) {
	c := buildCoordTable()
	p := Pairs(c)
	n := len(c.Reference)
	want := n * (n - 1) / 2
	if len(p.Rows) != want {
		t.Errorf("len(Rows) = %d, want %d", len(p.Rows), want)
	}
	if p.Rows[0].Key != "1, 2" {
		t.Errorf("first pair key = %q, want %q", p.Rows[0].Key, "1, 2")
	}
}

func TestScoreFormulaAndFloor(t *testing.T) {
	c := buildCoordTable()
	p := Pairs(c)
	s := Score(p)
	for _, row := range s.Rows {
		if row.Score != row.Mean/row.Std {
			t.Errorf("pair %s: score %v != mean/std %v", row.Key, row.Score, row.Mean/row.Std)
		}
		if row.Std <= 0 {
			t.Errorf("pair %s: std = %v, want > 0", row.Key, row.Std)
		}
	}
}

func TestScoreAllEqualColumnFloorsStd(t *testing.T) {
	ref := []string{"ALA", "CYS"}
	chain := &ChainCoords{ResidueCode: ref, XYZ: [][3]float64{{0, 0, 0}, {5, 0, 0}}}
	c := &CoordTable{
		Reference: ref,
		Order:     []string{"1ABC A", "1ABC B"},
		Chains:    map[string]*ChainCoords{"1ABC A": chain, "1ABC B": chain},
	}
	s := Score(Pairs(c))
	if len(s.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(s.Rows))
	}
	row := s.Rows[0]
	if row.Std != stdFloor {
		t.Errorf("Std = %v, want floor %v", row.Std, stdFloor)
	}
	if math.Abs(row.Score-row.Mean*10000) > 1e-9 {
		t.Errorf("Score = %v, want mean*10000 = %v", row.Score, row.Mean*10000)
	}
}

func TestCisInvariant(t *testing.T) {
	c := buildCoordTable()
	p := Pairs(c)
	report := Cis(p, 3.3)
	if report.CisNum > len(p.Rows) {
		t.Errorf("CisNum = %d exceeds total pairs %d", report.CisNum, len(p.Rows))
	}
	if len(report.PairKeys) > 20 {
		t.Errorf("len(PairKeys) = %d, want <= 20", len(report.PairKeys))
	}
}

func TestCisNoRowsBelowThreshold(t *testing.T) {
	ref := []string{"ALA", "CYS"}
	chain := &ChainCoords{ResidueCode: ref, XYZ: [][3]float64{{0, 0, 0}, {100, 0, 0}}}
	c := &CoordTable{
		Reference: ref,
		Order:     []string{"1ABC A"},
		Chains:    map[string]*ChainCoords{"1ABC A": chain},
	}
	report := Cis(Pairs(c), 3.3)
	if report.CisNum != 0 || len(report.PairKeys) != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestSummarize(t *testing.T) {
	c := buildCoordTable()
	s := Score(Pairs(c))
	summary := Summarize(s)
	if summary.TotalPairs != len(s.Rows) {
		t.Errorf("TotalPairs = %d, want %d", summary.TotalPairs, len(s.Rows))
	}
	if summary.MaxScore < summary.MinScore {
		t.Errorf("MaxScore %v < MinScore %v", summary.MaxScore, summary.MinScore)
	}
}

func TestResolveCoordinatesDropsRowMissingCA(t *testing.T) {
	dir := t.TempDir()
	csv := "model_num,asym_id,comp_id,seq_id,atom_id,Cartn_x,Cartn_y,Cartn_z,ins_code\n" +
		"1,A,ALA,1,CA,0.0,0.0,0.0,?\n" +
		"1,A,CYS,2,N,1.0,0.0,0.0,?\n" +
		"1,A,ASP,3,CA,2.0,0.0,0.0,?\n"
	if err := os.WriteFile(filepath.Join(dir, "1ABC.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m := &ensemble.Matrix{
		Reference: []string{"ALA", "CYS", "ASP"},
		Order:     []string{"1ABC A"},
		Columns: map[string][]ensemble.Cell{
			"1ABC A": {
				{MonID: "ALA", SeqNum: "1", Present: true},
				{MonID: "CYS", SeqNum: "2", Present: true},
				{MonID: "ASP", SeqNum: "3", Present: true},
			},
		},
	}
	ct, err := ResolveCoordinates(m, dir)
	if err != nil {
		t.Fatalf("ResolveCoordinates: %v", err)
	}
	if len(ct.Reference) != 2 {
		t.Fatalf("Reference = %v, want 2 rows (seq_id 2 has no Cα)", ct.Reference)
	}
	if ct.Reference[0] != "ALA" || ct.Reference[1] != "ASP" {
		t.Errorf("Reference = %v, want [ALA ASP]", ct.Reference)
	}
	chain := ct.Chains["1ABC A"]
	if chain.XYZ[1] != [3]float64{2.0, 0.0, 0.0} {
		t.Errorf("chain.XYZ[1] = %v, want [2 0 0]", chain.XYZ[1])
	}
	if len(ct.Index) != 2 || ct.Index[0] != 0 || ct.Index[1] != 2 {
		t.Errorf("Index = %v, want [0 2] (row 1 dropped for missing Ca)", ct.Index)
	}
}

func TestPairsKeyUsesPreDropIndex(t *testing.T) {
	ref := []string{"ALA", "ASP"}
	chain := &ChainCoords{ResidueCode: ref, XYZ: [][3]float64{{0, 0, 0}, {2, 0, 0}}}
	c := &CoordTable{
		Reference: ref,
		Order:     []string{"1ABC A"},
		Chains:    map[string]*ChainCoords{"1ABC A": chain},
		Index:     []int{0, 2},
	}
	p := Pairs(c)
	if len(p.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(p.Rows))
	}
	if p.Rows[0].Key != "1, 3" {
		t.Errorf("Key = %q, want %q (original row 2, 0-based, dropped between them)", p.Rows[0].Key, "1, 3")
	}
}
