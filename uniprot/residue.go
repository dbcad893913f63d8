package uniprot

import "fmt"

// ErrUnknownResidue is returned by OneToThree for a letter outside the
// fixed 20 canonical amino acids plus the {B,Z,O,U,X} extension set.
type ErrUnknownResidue byte

func (e ErrUnknownResidue) Error() string {
	return fmt.Sprintf("uniprot: unknown residue letter %q", byte(e))
}

// oneToThree is the fixed one-letter to three-letter amino acid table,
// extended with the non-canonical and ambiguity codes UniProt sequences
// may carry: O (pyrrolysine, HYP in this table per spec), U (selenocysteine),
// X (any residue) and the ambiguity tokens B ("D|N") and Z ("E|Q").
var oneToThree = map[byte]string{
	'A': "ALA",
	'B': "D|N",
	'C': "CYS",
	'D': "ASP",
	'E': "GLU",
	'F': "PHE",
	'G': "GLY",
	'H': "HIS",
	'I': "ILE",
	'K': "LYS",
	'L': "LEU",
	'M': "MET",
	'N': "ASN",
	'O': "HYP",
	'P': "PRO",
	'Q': "GLN",
	'R': "ARG",
	'S': "SER",
	'T': "THR",
	'U': "SEC",
	'V': "VAL",
	'W': "TRP",
	'X': "any",
	'Y': "TYR",
	'Z': "E|Q",
}

// OneToThree converts a single one-letter residue code to its three-letter
// (or ambiguity-token) form. Letters outside the fixed table fail with
// ErrUnknownResidue.
func OneToThree(letter byte) (string, error) {
	code, ok := oneToThree[letter]
	if !ok {
		return "", ErrUnknownResidue(letter)
	}
	return code, nil
}

// ConvertThree expands a one-letter protein sequence into its three-letter
// (or ambiguity-token) representation, one entry per input residue.
func ConvertThree(sequence string) ([]string, error) {
	out := make([]string, len(sequence))
	for i := 0; i < len(sequence); i++ {
		code, err := OneToThree(sequence[i])
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}
