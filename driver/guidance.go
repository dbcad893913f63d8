package driver

import (
	"fmt"
	"strings"
)

// noDataGuidance builds the long-form "no usable PDB entries" message,
// reproducing dsa_cli.py's method-specific guidance text in English: an
// X-ray-only search gets a suggestion to widen --method, any other search
// gets a suggestion to double-check the accession.
func noDataGuidance(cfg Config, counts map[string]int, total int) string {
	lines := []string{
		"No data was found for this analysis.",
		"",
		fmt.Sprintf("UniProt ID: %s", cfg.UniProtID),
		fmt.Sprintf("Search condition: %s", searchConditionLabel(cfg.Method)),
	}
	if cfg.Method == "X-ray" {
		lines = append(lines,
			"",
			"Structures found:",
			fmt.Sprintf("  - X-ray crystallography: %d", counts["X-ray"]),
			fmt.Sprintf("  - NMR: %d", counts["NMR"]),
			fmt.Sprintf("  - Electron microscopy: %d", counts["EM"]),
			fmt.Sprintf("  - Total: %d", total),
			"",
			"Suggested fix:",
			"  X-ray data alone is not enough to run this analysis.",
			"  Widen the search to include other determination methods:",
			"",
			"  1. Return to the analysis screen",
			"  2. Find the \"Method (PDB filter)\" option",
			"  3. Change the selection from \"X-ray\" to \"All\"",
			"  4. Re-run the analysis",
			"",
			"  This uses X-ray, NMR and electron microscopy structures together.",
		)
	} else {
		lines = append(lines,
			"",
			fmt.Sprintf("Structures found: %d", total),
			"",
			"Suggested fix:",
			"  This UniProt ID may have no usable structures, or very few.",
			"",
			"  Please check:",
			"  - that the UniProt ID is correct",
			"  - trying a different UniProt ID",
		)
	}
	if cfg.NegativePDBID != "" {
		lines = append(lines, fmt.Sprintf("  - excluded PDB IDs: %s", cfg.NegativePDBID))
	}
	return joinLines(lines)
}

// insufficientStructuresGuidance builds the "not enough structures after
// classification" message, reproducing dsa_cli.py's min_structures shortfall
// guidance.
func insufficientStructuresGuidance(cfg Config, found int) string {
	recommended := found
	if recommended < 1 {
		recommended = 1
	}
	lines := []string{
		"Not enough data was found to run this analysis.",
		"",
		"Current status:",
		fmt.Sprintf("  - structures found: %d", found),
		fmt.Sprintf("  - minimum required: %d", cfg.MinStructures),
		fmt.Sprintf("  - shortfall: %d", cfg.MinStructures-found),
		"",
		"Suggested fix, either of:",
		"",
		"  Option 1: lower the minimum structure count",
		"    - reduce the \"minimum structure count\" setting",
		fmt.Sprintf("    - current value: %d", cfg.MinStructures),
		fmt.Sprintf("    - recommended: %d or less (at or below the number found)", recommended),
		"",
		"  Option 2: include more structures",
		"    - change \"Method (PDB filter)\" to \"All\"",
		"    - this uses X-ray, NMR and electron microscopy structures together",
	}
	if cfg.NegativePDBID != "" {
		lines = append(lines,
			"",
			"  Option 3: review excluded structures",
			fmt.Sprintf("    - currently excluded PDB IDs: %s", cfg.NegativePDBID),
			"    - clear this field if exclusion isn't necessary",
		)
	}
	return joinLines(lines)
}

func searchConditionLabel(method string) string {
	if method == "X-ray" {
		return "X-ray crystallography only"
	}
	return "all structure determination methods"
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
