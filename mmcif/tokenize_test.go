package mmcif

import "testing"

const sampleCIF = `data_1ABC
#
_struct_ref_seq.pdbx_strand_id   A
_struct_ref_seq.pdbx_db_accession P00001
_struct_ref_seq.seq_align_beg 1
_struct_ref_seq.seq_align_end 3
#
loop_
_pdbx_poly_seq_scheme.pdb_mon_id
_pdbx_poly_seq_scheme.pdb_seq_num
_pdbx_poly_seq_scheme.hetero
_pdbx_poly_seq_scheme.pdb_strand_id
ALA 1 n A
CYS 2 n A
ASP 3 n A
#
loop_
_atom_site.group_PDB
_atom_site.auth_asym_id
_atom_site.auth_comp_id
_atom_site.auth_seq_id
_atom_site.auth_atom_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.label_alt_id
_atom_site.pdbx_PDB_model_num
_atom_site.pdbx_PDB_ins_code
ATOM A ALA 1 CA 1.000 2.000 3.000 . 1 ?
ATOM A CYS 2 CA 4.000 5.000 6.000 . 1 ?
ATOM A ASP 3 CA 7.000 8.000 9.000 . 1 ?
#
`

func TestTokenizeAndParseDocument(t *testing.T) {
	tokens, err := tokenize([]byte(sampleCIF))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	doc, err := parseDocument(tokens)
	if err != nil {
		t.Fatalf("parseDocument: %v", err)
	}
	if got := doc.column("struct_ref_seq", "pdbx_strand_id"); len(got) != 1 || got[0] != "A" {
		t.Errorf("struct_ref_seq.pdbx_strand_id = %v, want [A]", got)
	}
	mon := doc.column("pdbx_poly_seq_scheme", "pdb_mon_id")
	if len(mon) != 3 || mon[1] != "CYS" {
		t.Errorf("pdb_mon_id = %v, want [ALA CYS ASP]", mon)
	}
	atomID := doc.column("atom_site", "auth_atom_id")
	if len(atomID) != 3 || atomID[0] != "CA" {
		t.Errorf("auth_atom_id = %v, want three CA entries", atomID)
	}
}

func TestBuildEntry(t *testing.T) {
	tokens, err := tokenize([]byte(sampleCIF))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	doc, err := parseDocument(tokens)
	if err != nil {
		t.Fatalf("parseDocument: %v", err)
	}
	e, err := buildEntry("1ABC", doc)
	if err != nil {
		t.Fatalf("buildEntry: %v", err)
	}
	if len(e.Chain) != 3 || e.Chain[1].MonID != "CYS" {
		t.Errorf("Chain = %+v", e.Chain)
	}
	if len(e.StructRefSeq) != 1 || e.StructRefSeq[0].SeqAlignBeg != 1 || e.StructRefSeq[0].SeqAlignEnd != 3 {
		t.Errorf("StructRefSeq = %+v", e.StructRefSeq)
	}
	if e.StructRefSeq[0].SortIndex != 0 {
		t.Errorf("SortIndex = %d, want 0", e.StructRefSeq[0].SortIndex)
	}
}
