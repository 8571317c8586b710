/*
Copyright (C) 2026  Carl-Philip Hänsch
Copyright (C) 2013  Pieter Kelchtermans (originally licensed unter WTFPL 2.0)

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
	"io"
	"fmt"
	"bytes"
	"strings"
	"runtime/debug"
	"github.com/google/btree"
	"github.com/chzyer/readline"
)

const newprompt  = "\033[32m|>\033[0m "
const contprompt = "\033[32m..\033[0m "
const resultprompt = "\033[31m=\033[0m "
const errorprompt  = "\033[31m!\033[0m "

// promptCompleter completes identifiers from everything bound in the
// environment chain, so builtins and host functions both show up.
type promptCompleter struct {
	names *btree.BTreeG[string]
}

func newPromptCompleter(en *Env) *promptCompleter {
	t := btree.NewG[string](8, func(a string, b string) bool { return a < b })
	for e := en; e != nil; e = e.Outer {
		for name := range e.Vars {
			t.ReplaceOrInsert(name)
		}
	}
	return &promptCompleter{names: t}
}

func (c *promptCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && !isTermBoundary(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	var result [][]rune
	c.names.AscendGreaterOrEqual(prefix, func(name string) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		result = append(result, []rune(name[len(prefix):]))
		return true
	})
	return result, len(prefix)
}

func isTermBoundary(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '(' || r == ')' || r == '"'
}

// openParens counts unclosed parentheses outside of string literals.
// A positive result means the reader should ask for another line.
func openParens(line string) int {
	depth := 0
	inString := false
	escaped := false
	for _, r := range line {
		if inString {
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

// ReplInstance is the active readline instance, exported so the exit
// routine can close it and restore the terminal on signals.
var ReplInstance *readline.Instance

func Repl(en *Env) {
	l, err := readline.NewEx(&readline.Config {
		Prompt: newprompt,
		HistoryFile: ".almostlisp-history.tmp",
		InterruptPrompt: "^C",
		EOFPrompt: "exit",
		HistorySearchFold: true,
		AutoComplete: newPromptCompleter(en),
	})
	if err != nil {
		panic(err)
	}
	ReplInstance = l
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				oldline = ""
				l.SetPrompt(newprompt)
				continue
			}
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == "quit" {
			fmt.Println("Bye for now!")
			break
		}
		if openParens(line) > 0 {
			// keep collecting lines until the parens are balanced
			oldline = line + "\n"
			l.SetPrompt(contprompt)
			continue
		}

		// anti-panic func so a misbehaving host function cannot kill the prompt
		func () {
			defer func () {
				if r := recover(); r != nil {
					fmt.Println("panic:", r, string(debug.Stack()))
				}
			}()
			result, err := EvalAll("user prompt", line, en)
			if err != nil {
				fmt.Print(errorprompt)
				fmt.Println(err.Error())
				return
			}
			var b bytes.Buffer
			Serialize(&b, result)
			fmt.Print(resultprompt)
			fmt.Println(b.String())
		}()
		oldline = ""
		l.SetPrompt(newprompt)
	}
}
