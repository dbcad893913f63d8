// Package driver orchestrates a full DSA run: it fetches the UniProt
// reference, downloads and classifies candidate PDB entries, builds and
// trims the ensemble matrix, scores it, renders the plots, and writes
// result.json/status.json.
package driver

import (
	"net/http"
)

// Config carries every CLI flag a run needs.
type Config struct {
	UniProtID      string
	OutDir         string
	SequenceRatio  float64 // fraction [0,1]; multiplied by 100 before ensemble.Trim
	MinStructures  int
	Method         string // "X-ray", "NMR", "EM", or "" for all
	NegativePDBID  string
	CisThreshold   float64
	ProcCis        bool
	Verbose        bool
	ChainThreshold int // default 3; not user-configurable via CLI but kept here for testability

	Client *http.Client
}

// Parameters echoes the run's configuration into result.json.
type Parameters struct {
	SequenceRatio float64 `json:"sequence_ratio"`
	MinStructures int     `json:"min_structures"`
	Method        string  `json:"method"`
	NegativePDBID string  `json:"negative_pdbid"`
	CisThreshold  float64 `json:"cis_threshold"`
	ProcCis       bool    `json:"proc_cis"`
}

// CisStatistics is the cis sub-analysis block embedded in Statistics.
type CisStatistics struct {
	CisDistMean  float64  `json:"cis_dist_mean"`
	CisDistStd   float64  `json:"cis_dist_std"`
	CisScoreMean float64  `json:"cis_score_mean"`
	CisNum       int      `json:"cis_num"`
	Mix          int      `json:"mix"`
	Threshold    float64  `json:"threshold,omitempty"`
	CisPairList  []string `json:"cis_pair_list,omitempty"`
	CisPairTotal int      `json:"cis_pair_total,omitempty"`
}

// Statistics is the run-level summary block of result.json.
type Statistics struct {
	UniProtID     string         `json:"uniprot_id"`
	Entries       int            `json:"entries"`
	Chains        int            `json:"chains"`
	Length        int            `json:"length"`
	LengthPercent float64        `json:"length_percent"`
	Umf           float64        `json:"umf"`
	Resolution    *float64       `json:"resolution"`
	PDBIDs        []string       `json:"pdb_ids"`
	CisAnalysis   *CisStatistics `json:"cis_analysis,omitempty"`
}

// ScoreSummary is the score-table-level aggregate block of result.json.
type ScoreSummary struct {
	TotalPairs   int     `json:"total_pairs"`
	MeanScore    float64 `json:"mean_score"`
	StdScore     float64 `json:"std_score"`
	MaxScore     float64 `json:"max_score"`
	MinScore     float64 `json:"min_score"`
	MeanDistance float64 `json:"mean_distance"`
	MeanStd      float64 `json:"mean_std"`
}

// Result is the full content of result.json.
type Result struct {
	Status             string         `json:"status"`
	Error              string         `json:"error,omitempty"`
	UniProtID          string         `json:"uniprot_id"`
	Method             string         `json:"method,omitempty"`
	PDBCounts          map[string]int `json:"pdb_counts,omitempty"`
	TotalPDBCount      int            `json:"total_pdb_count,omitempty"`
	FoundStructures    int            `json:"found_structures,omitempty"`
	RequiredStructures int            `json:"required_structures,omitempty"`
	Parameters         *Parameters    `json:"parameters,omitempty"`
	Statistics         *Statistics    `json:"statistics,omitempty"`
	ScoreSummary       *ScoreSummary  `json:"score_summary,omitempty"`
}

// Status is the full content of status.json.
type Status struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}
