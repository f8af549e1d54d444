// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package log provides functionality similar to the standard log
// package with some extensions:
//   - verbosity levels
//   - global verbosity setting shared by multiple packages
//   - ability to disable all output
package log

import (
	"flag"
	"fmt"
	golog "log"
	"strings"
	"sync"
	"time"
)

var (
	flagV          = flag.Int("vv", 0, "verbosity")
	mu             sync.Mutex
	cacheMaxLines  int
	cacheMaxMem    int
	cacheMem       int
	cachedMessages []string
	prependTime    = true // for testing
)

// EnableLogCaching makes the last few log messages available via
// CachedLogOutput, bounded both by line count and total size.
func EnableLogCaching(maxLines, maxMem int) {
	mu.Lock()
	defer mu.Unlock()
	cacheMaxLines = maxLines
	cacheMaxMem = maxMem
}

// CachedLogOutput returns the currently cached messages, one per line.
func CachedLogOutput() string {
	mu.Lock()
	defer mu.Unlock()
	var sb strings.Builder
	for _, msg := range cachedMessages {
		sb.WriteString(msg)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// V reports whether logging at the given verbosity level is enabled.
func V(level int) bool {
	return level <= *flagV
}

// Logf writes a message at the given verbosity level.
func Logf(v int, msg string, args ...interface{}) {
	writeMessage(v, "", msg, args...)
}

// Errorf writes an error message regardless of verbosity.
func Errorf(msg string, args ...interface{}) {
	writeMessage(0, "ERROR", msg, args...)
}

// Fatalf logs the message and terminates the process.
func Fatalf(msg string, args ...interface{}) {
	golog.Fatalf(msg, args...)
}

func writeMessage(v int, severity, msg string, args ...interface{}) {
	cache(fmt.Sprintf(msg, args...))
	if !V(v) {
		return
	}
	timeStr := ""
	if prependTime {
		timeStr = time.Now().Format("2006/01/02 15:04:05 ")
	}
	sevStr := ""
	if severity != "" {
		sevStr = "[" + severity + "] "
	}
	mu.Lock()
	defer mu.Unlock()
	golog.Print(timeStr + sevStr + fmt.Sprintf(msg, args...))
}

// cache keeps messages regardless of console verbosity so that error
// reports can include recent context the user did not ask to see.
func cache(msg string) {
	mu.Lock()
	defer mu.Unlock()
	if cacheMaxLines == 0 || msg == "" {
		return
	}
	cachedMessages = append(cachedMessages, msg)
	cacheMem += len(msg)
	for len(cachedMessages) > cacheMaxLines || cacheMem > cacheMaxMem && len(cachedMessages) > 1 {
		cacheMem -= len(cachedMessages[0])
		cachedMessages = cachedMessages[1:]
	}
}

func init() {
	golog.SetFlags(0)
}
