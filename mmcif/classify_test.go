package mmcif

import "testing"

func entryWith(refs []StructRefSeqRow, difs []StructRefSeqDifRow) *Entry {
	return &Entry{StructRefSeq: refs, StructRefSeqDif: difs}
}

func TestClassifyMismatch(t *testing.T) {
	e := entryWith([]StructRefSeqRow{{StrandID: "A", Accession: "P00001"}}, nil)
	if got := Classify([]string{"Q99999"}, e); got != Mismatch {
		t.Errorf("Classify = %v, want Mismatch", got)
	}
}

func TestClassifyNormal(t *testing.T) {
	e := entryWith([]StructRefSeqRow{{StrandID: "A", Accession: "P00001"}}, nil)
	if got := Classify([]string{"P00001"}, e); got != Normal {
		t.Errorf("Classify = %v, want Normal", got)
	}
}

func TestClassifyChimeraDuplicatePair(t *testing.T) {
	e := entryWith([]StructRefSeqRow{
		{StrandID: "A", Accession: "P00001"},
		{StrandID: "A", Accession: "P00001"},
	}, nil)
	if got := Classify([]string{"P00001"}, e); got != Chimera {
		t.Errorf("Classify = %v, want Chimera", got)
	}
}

func TestClassifySubstitutionEngineeredMutation(t *testing.T) {
	e := entryWith(
		[]StructRefSeqRow{{StrandID: "A", Accession: "P00001"}},
		[]StructRefSeqDifRow{{StrandID: "A", SeqNum: "12", DBSeqNum: "12", Details: "engineered mutation"}},
	)
	if got := Classify([]string{"P00001"}, e); got != Substitution {
		t.Errorf("Classify = %v, want Substitution", got)
	}
}

func TestClassifyNormalMicroheterogeneity(t *testing.T) {
	e := entryWith(
		[]StructRefSeqRow{{StrandID: "A", Accession: "P00001"}},
		[]StructRefSeqDifRow{{StrandID: "A", SeqNum: "12", DBSeqNum: "12", Details: "microheterogeneity"}},
	)
	if got := Classify([]string{"P00001"}, e); got != Normal {
		t.Errorf("Classify = %v, want Normal", got)
	}
}

func TestClassifyChimeraDuplicateStrandAcrossTable(t *testing.T) {
	e := entryWith(
		[]StructRefSeqRow{
			{StrandID: "A", Accession: "P00001"},
			{StrandID: "A", Accession: "P00002"},
		},
		[]StructRefSeqDifRow{{StrandID: "A", SeqNum: "5", DBSeqNum: "5", Details: "other"}},
	)
	if got := Classify([]string{"P00001"}, e); got != Chimera {
		t.Errorf("Classify = %v, want Chimera", got)
	}
}

func TestClassifyDelinsDuplicateSeqNum(t *testing.T) {
	e := entryWith(
		[]StructRefSeqRow{{StrandID: "A", Accession: "P00001"}},
		[]StructRefSeqDifRow{
			{StrandID: "A", SeqNum: "5", DBSeqNum: "5", Details: "other"},
			{StrandID: "A", SeqNum: "5", DBSeqNum: "6", Details: "other"},
		},
	)
	if got := Classify([]string{"P00001"}, e); got != Delins {
		t.Errorf("Classify = %v, want Delins", got)
	}
}

func TestClassifySubstitutionFallthrough(t *testing.T) {
	e := entryWith(
		[]StructRefSeqRow{{StrandID: "A", Accession: "P00001"}},
		[]StructRefSeqDifRow{{StrandID: "A", SeqNum: "5", DBSeqNum: "5", Details: "other"}},
	)
	if got := Classify([]string{"P00001"}, e); got != Substitution {
		t.Errorf("Classify = %v, want Substitution", got)
	}
}
