// Command dsa runs a Distance-based Structural Alignment scoring analysis
// for a single UniProt accession, fetching its PDB ensemble, scoring every
// residue pair across the ensemble, and writing result.json, status.json
// and two diagnostic plots to an output directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dsabio/dsa/driver"
)

var (
	uniprotID     = flag.String("uniprot", "", "UniProt accession to analyse (required)")
	outDir        = flag.String("out", "", "output directory for result.json, status.json and plots (required)")
	sequenceRatio = flag.Float64("sequence-ratio", 0.7, "minimum fraction of reference residues a chain must cover to be kept")
	minStructures = flag.Int("min-structures", 5, "minimum number of classified PDB entries required to proceed")
	method        = flag.String("method", "X-ray", `structure determination method filter: "X-ray", "NMR", "EM", or "" for all`)
	negativePDBID = flag.String("negative-pdbid", "", "comma or whitespace separated PDB IDs to exclude")
	cisThreshold  = flag.Float64("cis-threshold", 3.3, "distance threshold in angstrom for the cis sub-analysis")
	procCis       = flag.Bool("proc-cis", true, "run the cis sub-analysis")
	verbose       = flag.Bool("verbose", false, "print per-entry detail lines to stderr")
	timeout       = flag.Duration("timeout", 10*time.Minute, "overall run timeout")

	errFile = flag.String("err", "", "log output file name (default to stderr)")
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "run" {
		args = args[1:]
	}
	flag.CommandLine.Parse(args)
	if *uniprotID == "" || *outDir == "" {
		fmt.Fprintln(os.Stderr, "invalid argument: -uniprot and -out are required")
		flag.Usage()
		os.Exit(1)
	}

	if *errFile != "" {
		w, err := os.Create(*errFile)
		if err != nil {
			log.Fatalf("failed to create log file: %v", err)
		}
		defer w.Close()
		log.SetOutput(w)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	cfg := driver.Config{
		UniProtID:     *uniprotID,
		OutDir:        *outDir,
		SequenceRatio: *sequenceRatio,
		MinStructures: *minStructures,
		Method:        *method,
		NegativePDBID: *negativePDBID,
		CisThreshold:  *cisThreshold,
		ProcCis:       *procCis,
		Verbose:       *verbose,
		Client:        &http.Client{Timeout: 2 * time.Minute},
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, status, err := driver.Run(ctx, cfg, os.Stderr)
	if err != nil {
		log.Printf("run failed: %v", err)
		result = &driver.Result{Status: "failed", Error: err.Error(), UniProtID: *uniprotID}
		status = &driver.Status{Status: "failed", Progress: 0, Message: err.Error()}
	}

	if err := writeJSON(filepath.Join(*outDir, "result.json"), result); err != nil {
		log.Fatalf("failed to write result.json: %v", err)
	}
	if err := writeJSON(filepath.Join(*outDir, "status.json"), status); err != nil {
		log.Fatalf("failed to write status.json: %v", err)
	}

	if result.Status != "success" {
		os.Exit(1)
	}
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
