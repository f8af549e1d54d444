// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhardion/damex/pkg/log"
)

func TestFailMessage(t *testing.T) {
	// Without caching the message stands alone.
	assert.Equal(t, "no -data file specified\n", failMessage("no -data file specified"))

	log.EnableLogCaching(4, 1<<10)
	log.Logf(3, "loaded 10 rows")
	log.Logf(3, "fitting on 10 samples")
	msg := failMessage("fit failed")
	assert.True(t, strings.HasPrefix(msg, "fit failed\n"), "got: %q", msg)
	assert.Contains(t, msg, "recent log messages:\n")
	assert.Contains(t, msg, "loaded 10 rows\n")
	assert.Contains(t, msg, "fitting on 10 samples\n")
}
