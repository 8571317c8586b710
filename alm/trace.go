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

import "io"
import "os"
import "fmt"
import "sync"
import "time"
import "encoding/json"

// Trace, when set, receives Chrome trace-event output (load the file
// via chrome://tracing) with one duration pair per top-level reduction
// and one instant event per step. TracePrint additionally prints every
// step as a "before => after" line to stdout.
var Trace *Tracefile
var TracePrint bool

// SetTrace opens or closes the default trace. The target directory
// comes from ALMOSTLISP_TRACEDIR.
func SetTrace(on bool) error {
	if Trace != nil {
		Trace.Close()
		Trace = nil
	}
	if on {
		f, err := os.Create(os.Getenv("ALMOSTLISP_TRACEDIR") + "trace_" + fmt.Sprint(time.Now().Unix()) + ".json")
		if err != nil {
			return err
		}
		Trace = NewTrace(f)
	}
	return nil
}

type Tracefile struct {
	isFirst bool
	file    io.WriteCloser
	m       sync.Mutex
}

type traceEvent struct {
	Name  string `json:"name"`
	Cat   string `json:"cat"`
	Phase string `json:"ph"`
	Ts    int64  `json:"ts"` // microseconds since process start
	Pid   int    `json:"pid"`
	Tid   int    `json:"tid"`
	Scope string `json:"s,omitempty"`
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	result := new(Tracefile)
	result.file = file
	result.isFirst = true
	return result
}

func (t *Tracefile) Close() {
	t.file.Write([]byte("]"))
	t.file.Close()
}

// Duration wraps f in a begin/end event pair.
func (t *Tracefile) Duration(name string, cat string, f func()) {
	t.event(name, cat, "B")
	defer t.event(name, cat, "E")
	f()
}

// Event records a single global instant event.
func (t *Tracefile) Event(name string, cat string) {
	t.event(name, cat, "i")
}

func (t *Tracefile) event(name string, cat string, phase string) {
	e := traceEvent{Name: name, Cat: cat, Phase: phase, Ts: time.Since(start).Microseconds(), Scope: "g"}
	b, _ := json.Marshal(e)
	t.m.Lock()
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(",\n"))
	}
	t.file.Write(b)
	t.m.Unlock()
}

// traceStep reports one completed reduction step.
func traceStep(before Term, after Term) {
	if TracePrint {
		fmt.Println("\033[36m~\033[0m " + before.String() + " \033[36m=>\033[0m " + after.String())
	}
	if Trace != nil {
		Trace.Event("step "+before.String(), "reduce")
	}
}

var start time.Time = time.Now()
