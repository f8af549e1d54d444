// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// damex fits the DAMEX tail-dependence estimator on a numeric CSV
// matrix and scores observations against a fitted model.
//
// Usage:
//
//	damex -mode fit -data train.csv -model out.model [-config damex.cfg]
//	damex -mode score -data test.csv -model out.model [-out scores.txt]
//	damex -mode extreme -data test.csv -model out.model [-out mask.txt]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mhardion/damex/pkg/config"
	"github.com/mhardion/damex/pkg/damex"
	"github.com/mhardion/damex/pkg/log"
	"github.com/mhardion/damex/pkg/model"
	"github.com/mhardion/damex/pkg/osutil"
	"github.com/mhardion/damex/pkg/tool"
)

var (
	flagMode   = flag.String("mode", "", "one of: fit, score, extreme")
	flagConfig = flag.String("config", "", "estimator config file (JSON, optional)")
	flagData   = flag.String("data", "", "input CSV matrix")
	flagModel  = flag.String("model", "damex.model", "model file")
	flagOut    = flag.String("out", "", "output file (default stdout)")
)

// Config mirrors damex.Config for the config file; the k rule is
// referenced by name since functions cannot live in JSON.
type Config struct {
	Eps   float64 `json:"eps"`
	P     float64 `json:"p"`
	KRule string  `json:"k_rule"`
}

func main() {
	flag.Parse()
	// Failure messages include recent log context.
	log.EnableLogCaching(100, 1<<20)
	switch *flagMode {
	case "fit":
		fit()
	case "score":
		score()
	case "extreme":
		extreme()
	default:
		tool.Failf("unknown mode %q (want fit, score or extreme)", *flagMode)
	}
}

func fit() {
	cfg := Config{Eps: 0.01, P: 0.1, KRule: "sqrt"}
	if *flagConfig != "" {
		if err := config.LoadFile(*flagConfig, &cfg); err != nil {
			tool.Fail(err)
		}
	}
	kRule, err := damex.ParseKRule(cfg.KRule)
	if err != nil {
		tool.Fail(err)
	}
	est, err := damex.New(damex.Config{Eps: cfg.Eps, P: cfg.P, K: kRule})
	if err != nil {
		tool.Fail(err)
	}
	x := readMatrix(*flagData)
	log.Logf(0, "fitting on %v samples, %v features", len(x), len(x[0]))
	if err := est.Fit(x); err != nil {
		tool.Fail(err)
	}
	diag := est.Diagnostics()
	log.Logf(0, "fitted: k=%v, %v support patterns, avg cardinality %.2f, retained mass %.4f/%.4f",
		diag.K, diag.Patterns, diag.AvgCardinality, diag.RetainedMass, diag.TotalMass)
	if err := model.Save(*flagModel, est); err != nil {
		tool.Fail(err)
	}
	log.Logf(0, "model saved to %v", *flagModel)
}

func score() {
	est := loadModel()
	x := readMatrix(*flagData)
	scores, err := est.Predict(x)
	if err != nil {
		tool.Fail(err)
	}
	lines := make([]string, len(scores))
	for i, s := range scores {
		lines[i] = strconv.FormatFloat(s, 'g', -1, 64)
	}
	writeOutput(lines)
}

func extreme() {
	est := loadModel()
	x := readMatrix(*flagData)
	mask, err := est.ExtremeRegion(x)
	if err != nil {
		tool.Fail(err)
	}
	lines := make([]string, len(mask))
	for i, in := range mask {
		if in {
			lines[i] = "1"
		} else {
			lines[i] = "0"
		}
	}
	writeOutput(lines)
}

func loadModel() *damex.Estimator {
	est, err := model.Load(*flagModel)
	if err != nil {
		tool.Fail(err)
	}
	return est
}

// readMatrix parses a CSV file of numeric rows. A single leading
// header row is skipped if its fields do not parse as numbers.
func readMatrix(filename string) [][]float64 {
	if filename == "" {
		tool.Failf("no -data file specified")
	}
	f, err := os.Open(filename)
	if err != nil {
		tool.Fail(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		tool.Fail(err)
	}
	var x [][]float64
	for i, rec := range records {
		row := make([]float64, len(rec))
		bad := false
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil || math.IsNaN(v) {
				bad = true
				break
			}
			row[j] = v
		}
		if bad {
			if i == 0 {
				log.Logf(1, "skipping header row in %v", filename)
				continue
			}
			tool.Failf("%v: row %v is not numeric", filename, i)
		}
		x = append(x, row)
	}
	if len(x) == 0 {
		tool.Failf("%v contains no numeric rows", filename)
	}
	return x
}

func writeOutput(lines []string) {
	data := strings.Join(lines, "\n") + "\n"
	if *flagOut == "" {
		fmt.Print(data)
		return
	}
	if err := osutil.WriteFile(*flagOut, []byte(data)); err != nil {
		tool.Fail(err)
	}
}
