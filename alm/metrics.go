/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package alm

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Engine counters. Single atomics on the hot path, no mutex; sessions
// from all transports share them.
var totalSteps int64
var totalCalls int64
var totalExpressions int64
var activeSessions int64

func countStep()       { atomic.AddInt64(&totalSteps, 1) }
func countCall()       { atomic.AddInt64(&totalCalls, 1) }
func countExpression() { atomic.AddInt64(&totalExpressions, 1) }
func sessionOpened()   { atomic.AddInt64(&activeSessions, 1) }
func sessionClosed()   { atomic.AddInt64(&activeSessions, -1) }

// EngineStats is a point-in-time copy of the engine counters.
type EngineStats struct {
	Steps       int64 // reduction steps taken
	Calls       int64 // builtin invocations
	Expressions int64 // top-level expressions evaluated
	Sessions    int64 // sessions currently open
	ProcessRSS  int64 // resident set size of this process in bytes
}

func ReadStats() EngineStats {
	return EngineStats{
		Steps:       atomic.LoadInt64(&totalSteps),
		Calls:       atomic.LoadInt64(&totalCalls),
		Expressions: atomic.LoadInt64(&totalExpressions),
		Sessions:    atomic.LoadInt64(&activeSessions),
		ProcessRSS:  readProcessRSS(),
	}
}

// readProcessRSS reads the RSS (resident set size) of this process from /proc/self/statm.
func readProcessRSS() int64 {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0
	}
	pages, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return pages * int64(os.Getpagesize())
}
