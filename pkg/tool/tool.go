// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package tool contains helpers shared by the command line tools.
package tool

import (
	"fmt"
	"os"

	"github.com/mhardion/damex/pkg/log"
)

// Failf prints the message followed by recently cached log messages
// (when log caching is enabled) and terminates the process.
func Failf(msg string, args ...interface{}) {
	os.Stderr.WriteString(failMessage(fmt.Sprintf(msg, args...)))
	os.Exit(1)
}

func Fail(err error) {
	Failf("%v", err)
}

func failMessage(msg string) string {
	if recent := log.CachedLogOutput(); recent != "" {
		msg += "\nrecent log messages:\n" + recent
	}
	return msg + "\n"
}
