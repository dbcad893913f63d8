package driver

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dsabio/dsa/chainbuilder"
	"github.com/dsabio/dsa/dsaplot"
	"github.com/dsabio/dsa/ensemble"
	"github.com/dsabio/dsa/mmcif"
	"github.com/dsabio/dsa/scorer"
	"github.com/dsabio/dsa/uniprot"
	"github.com/pkg/errors"
)

// ErrInsufficientData names the fatal "not enough data" failure class (no
// PDBs at all, fewer than MinStructures after classification, or fewer than
// ChainThreshold retained chains). Run does not return it: it reports these
// failures as a failed Result and Status with a nil error.
var ErrInsufficientData = errors.New("driver: insufficient data")

var negativeSplit = regexp.MustCompile(`[,\s]+`)

const defaultChainThreshold = 3

// Run executes the full five-step pipeline and returns the result/status
// pair to be written to result.json/status.json. The no-data,
// too-few-structures and too-few-chains failures come back as a failed
// Result/Status with a nil error; every other failure (the UniProt fetch or
// parse, coordinate resolution, plotting, work-directory creation) is
// returned as a non-nil error with nil Result/Status, in which case the
// caller should still write a generic failed Result/Status.
func Run(ctx context.Context, cfg Config, progress io.Writer) (*Result, *Status, error) {
	if cfg.ChainThreshold == 0 {
		cfg.ChainThreshold = defaultChainThreshold
	}
	if progress == nil {
		progress = os.Stderr
	}
	workDir := filepath.Join(cfg.OutDir, "work")
	pdbDir := filepath.Join(workDir, "pdb_files")
	atomCoordDir := filepath.Join(workDir, "atom_coord")
	if err := os.MkdirAll(atomCoordDir, 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "driver: create work dirs")
	}

	fmt.Fprintln(progress, "STEP 1/5: Checking PDB availability...")
	ref, err := uniprot.Fetch(ctx, cfg.Client, cfg.UniProtID)
	if err != nil {
		return nil, nil, err
	}

	counts := make(map[string]int)
	total := 0
	for _, m := range []string{"X-ray", "NMR", "EM"} {
		n := len(ref.References(m))
		counts[m] = n
		total += n
	}

	pdblist := pdbIDs(ref.References(cfg.Method))
	pdblist = excludeNegative(pdblist, cfg.NegativePDBID)

	if len(pdblist) < 1 {
		msg := noDataGuidance(cfg, counts, total)
		result := &Result{
			Status:        "failed",
			Error:         msg,
			UniProtID:     cfg.UniProtID,
			Method:        methodLabel(cfg.Method),
			PDBCounts:     counts,
			TotalPDBCount: total,
		}
		return result, &Status{Status: "failed", Progress: 20, Message: msg}, nil
	}

	// Compatibility no-op: the original CLI re-checks PDB availability via a
	// second helper after the check above has already decided the outcome.
	countPDB(pdblist)

	fmt.Fprintln(progress, "STEP 2/5: Preparing data...")
	refCodes, err := ref.ReferenceCodes()
	if err != nil {
		return nil, nil, err
	}
	loader := &mmcif.Loader{PDBDir: pdbDir, AtomCoordDir: atomCoordDir, Client: cfg.Client}

	var normalSub, chimeraDelins []string
	columns := make(map[string][]ensemble.Cell)
	var order []string
	for _, pdbID := range pdblist {
		entry, err := loader.Load(ctx, pdbID)
		if err != nil {
			if cfg.Verbose {
				fmt.Fprintf(progress, "  %s: skipped (%v)\n", pdbID, err)
			}
			continue
		}
		class := mmcif.Classify(ref.Accessions(), entry)
		switch class {
		case mmcif.Normal, mmcif.Substitution:
			normalSub = append(normalSub, entry.PDBID)
		case mmcif.Chimera, mmcif.Delins:
			chimeraDelins = append(chimeraDelins, entry.PDBID)
			continue
		default:
			continue
		}

		begin, end, err := ref.Range(pdbID)
		if err != nil {
			continue
		}
		for _, row := range entry.StructRefSeq {
			if !containsAccession(ref.Accessions(), row.Accession) {
				continue
			}
			chain, err := chainbuilder.Build(entry, row)
			if err != nil {
				if cfg.Verbose {
					fmt.Fprintf(progress, "  %s %s: skipped (%v)\n", entry.PDBID, row.StrandID, err)
				}
				continue
			}
			col := padChain(chain, begin, end, len(refCodes))
			name := entry.PDBID + " " + row.StrandID
			columns[name] = col
			order = append(order, name)
		}
	}

	if cfg.Verbose {
		fmt.Fprintf(progress, "  Data preparation finished: %d/%d PDB entries, %d chains\n",
			len(normalSub)+len(chimeraDelins), len(pdblist), len(order))
	}

	if len(normalSub) < cfg.MinStructures {
		msg := insufficientStructuresGuidance(cfg, len(normalSub))
		result := &Result{
			Status:             "failed",
			Error:              msg,
			UniProtID:          cfg.UniProtID,
			FoundStructures:    len(normalSub),
			RequiredStructures: cfg.MinStructures,
		}
		return result, &Status{Status: "failed", Progress: 40, Message: msg}, nil
	}

	fmt.Fprintf(progress, "STEP 3/5: Processing %d PDB entries...\n", len(normalSub))

	fmt.Fprintln(progress, "STEP 4/5: Running DSA analysis...")
	matrix, dropped := ensemble.Trim(refCodes, columns, order, cfg.SequenceRatio*100)
	if cfg.Verbose {
		for _, d := range dropped {
			fmt.Fprintf(progress, "  %s is not used due to %s\n", d.Column, d.Reason)
		}
	}

	if len(matrix.Order) < cfg.ChainThreshold {
		msg := "Less than 3 chains"
		result := &Result{Status: "failed", Error: msg, UniProtID: cfg.UniProtID}
		return result, &Status{Status: "failed", Progress: 80, Message: msg}, nil
	}

	coords, err := scorer.ResolveCoordinates(matrix, atomCoordDir)
	if err != nil {
		return nil, nil, err
	}
	pairs := scorer.Pairs(coords)
	scoreTable := scorer.Score(pairs)
	if len(scoreTable.Rows) == 0 {
		msg := "Less than 3 chains"
		result := &Result{Status: "failed", Error: msg, UniProtID: cfg.UniProtID}
		return result, &Status{Status: "failed", Progress: 80, Message: msg}, nil
	}

	stats := buildStatistics(cfg, ref, matrix, scoreTable, len(refCodes))
	if cfg.ProcCis {
		cis := scorer.Cis(pairs, cfg.CisThreshold)
		stats.CisAnalysis = &CisStatistics{
			CisDistMean:  round2(cis.CisDistMean),
			CisDistStd:   round2(cis.CisDistStd),
			CisScoreMean: round2(cis.CisScoreMean),
			CisNum:       cis.CisNum,
			Mix:          cis.Mix,
			CisPairList:  cis.PairKeys,
			CisPairTotal: cis.PairTotal,
		}
		// The original only reports a threshold once it has found at least
		// one cis pair; an empty cis_index carries no threshold key at all.
		if cis.CisNum > 0 {
			stats.CisAnalysis.Threshold = cis.Threshold
		}
	}

	fmt.Fprintln(progress, "STEP 5/5: Generating plots...")
	heatmapPath := filepath.Join(cfg.OutDir, "heatmap.png")
	if err := dsaplot.Heatmap(scoreTable, heatmapPath, fmt.Sprintf("DSA Score Heatmap - %s", cfg.UniProtID)); err != nil {
		return nil, nil, err
	}
	scatterPath := filepath.Join(cfg.OutDir, "dist_score.png")
	if err := dsaplot.DistanceScore(scoreTable, scatterPath, "Distance vs Score", cfg.UniProtID); err != nil {
		return nil, nil, err
	}

	summary := scorer.Summarize(scoreTable)
	result := &Result{
		Status:    "success",
		UniProtID: cfg.UniProtID,
		Parameters: &Parameters{
			SequenceRatio: cfg.SequenceRatio,
			MinStructures: cfg.MinStructures,
			Method:        methodLabel(cfg.Method),
			NegativePDBID: cfg.NegativePDBID,
			CisThreshold:  cfg.CisThreshold,
			ProcCis:       cfg.ProcCis,
		},
		Statistics: stats,
		ScoreSummary: &ScoreSummary{
			TotalPairs:   summary.TotalPairs,
			MeanScore:    summary.MeanScore,
			StdScore:     summary.StdScore,
			MaxScore:     summary.MaxScore,
			MinScore:     summary.MinScore,
			MeanDistance: summary.MeanDistance,
			MeanStd:      summary.MeanStd,
		},
	}
	fmt.Fprintln(progress, "Analysis completed successfully")
	return result, &Status{Status: "done", Progress: 100, Message: "Analysis completed successfully"}, nil
}

func buildStatistics(cfg Config, ref *uniprot.RefMap, m *ensemble.Matrix, s *scorer.ScoreTable, fullLength int) *Statistics {
	pdbSet := make(map[string]bool)
	for _, name := range m.Order {
		pdbID, _, _ := strings.Cut(name, " ")
		pdbSet[pdbID] = true
	}
	pdbIDList := make([]string, 0, len(pdbSet))
	for id := range pdbSet {
		pdbIDList = append(pdbIDList, id)
	}
	sort.Strings(pdbIDList)

	var scoreSum float64
	for _, row := range s.Rows {
		scoreSum += row.Score
	}
	umf := round1(scoreSum / float64(len(s.Rows)))

	var resolutions []float64
	for _, id := range pdbIDList {
		for _, r := range ref.References("") {
			if strings.EqualFold(r.PDBID, id) {
				if v, ok := numericResolution(r.Resolution); ok {
					resolutions = append(resolutions, v)
				}
				break
			}
		}
	}
	var resolution *float64
	if len(resolutions) > 0 {
		var sum float64
		for _, v := range resolutions {
			sum += v
		}
		avg := round2(sum / float64(len(resolutions)))
		resolution = &avg
	}

	return &Statistics{
		UniProtID:     cfg.UniProtID,
		Entries:       len(pdbIDList),
		Chains:        len(m.Order),
		Length:        len(m.Reference),
		LengthPercent: round1(float64(len(m.Reference)) * 100 / float64(fullLength)),
		Umf:           umf,
		Resolution:    resolution,
		PDBIDs:        pdbIDList,
	}
}

// padChain pads a chain built over [begin,end] (1-based, inclusive) out to
// the full reference length with leading/trailing gaps.
func padChain(chain chainbuilder.Chain, begin, end, fullLength int) []ensemble.Cell {
	out := make([]ensemble.Cell, 0, fullLength)
	for i := 1; i < begin; i++ {
		out = append(out, ensemble.Cell{})
	}
	out = append(out, chain...)
	for i := end; i < fullLength; i++ {
		out = append(out, ensemble.Cell{})
	}
	if len(out) > fullLength {
		out = out[:fullLength]
	}
	for len(out) < fullLength {
		out = append(out, ensemble.Cell{})
	}
	return out
}

func pdbIDs(refs []uniprot.PDBRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.PDBID
	}
	return out
}

// excludeNegative drops every PDB ID (case-insensitive) named in a
// comma/whitespace-separated negative list.
func excludeNegative(pdblist []string, negative string) []string {
	if negative == "" {
		return pdblist
	}
	excluded := make(map[string]bool)
	for _, id := range negativeSplit.Split(strings.TrimSpace(negative), -1) {
		if id != "" {
			excluded[strings.ToUpper(id)] = true
		}
	}
	var out []string
	for _, id := range pdblist {
		if !excluded[strings.ToUpper(id)] {
			out = append(out, id)
		}
	}
	return out
}

// countPDB mirrors the original's redundant post-hoc availability check: by
// the time it runs, Run has already decided the outcome, so it is a no-op
// kept for parity with the original control flow.
func countPDB(pdblist []string) bool {
	return len(pdblist) >= 1
}

func containsAccession(accessions []string, acc string) bool {
	for _, a := range accessions {
		if a == acc {
			return true
		}
	}
	return false
}

func methodLabel(method string) string {
	if method == "" {
		return "all"
	}
	return method
}

func numericResolution(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	var v float64
	if _, err := fmt.Sscanf(b.String(), "%f", &v); err != nil {
		return 0, false
	}
	return v, true
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
