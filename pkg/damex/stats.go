// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package damex

import (
	"github.com/mhardion/damex/pkg/stat"
)

var (
	statFits = stat.New("fits", "Completed estimator fits",
		stat.Prometheus("damex_fits_total"))
	statPatterns = stat.New("patterns", "Support patterns retained by the last fit",
		stat.Prometheus("damex_patterns"))
	statPruned = stat.New("patterns pruned", "Support patterns dropped by thresholding in the last fit")
	statScored = stat.New("rows scored", "Total observations scored",
		stat.Prometheus("damex_rows_scored_total"))
	statScores = stat.New("score distribution", "Distribution of anomaly scores",
		stat.Distribution{}, stat.Prometheus("damex_score_mean"))
)
