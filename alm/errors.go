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

import "os"
import "fmt"

// Evaluation failures are values, not panics. Every entry point of the
// engine returns (Term, error); a failed evaluation leaves environments
// and registry untouched, so the caller can keep evaluating.

// ParseError reports malformed source text. Source is the origin label
// that was handed to the parser (file name, "repl", ...).
type ParseError struct {
	Source string
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return "syntax error: " + e.Msg
	}
	return "syntax error in " + e.Source + ": " + e.Msg
}

// UnboundNameError reports a name that resolves through no environment
// of the chain.
type UnboundNameError struct {
	Identifier string
}

func (e *UnboundNameError) Error() string {
	return "unbound name " + e.Identifier
}

// NotCallableError reports a call whose reduced callee is not a
// builtin. Callee holds the rendering of the offending term.
type NotCallableError struct {
	Callee string
}

func (e *NotCallableError) Error() string {
	return e.Callee + " is not callable"
}

// ArityError reports a call with the wrong number of arguments.
// Expected is the violated bound: the declared minimum when too few
// arguments were given, the declared maximum when too many.
type ArityError struct {
	Identifier string
	Expected   int
	Actual     int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("function %s expects %d parameters, got %d", e.Identifier, e.Expected, e.Actual)
}

// TypeMismatchError reports an argument whose kind violates the
// declared parameter contract. Position is 1-based.
type TypeMismatchError struct {
	Identifier string
	Position   int
	Expected   string
	Actual     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("function %s expects parameter %d to be %s, but found value of type %s", e.Identifier, e.Position, e.Expected, e.Actual)
}

// NegativeExponentError reports ^ with an exponent below zero. Integer
// arithmetic has no representation for the result, so the operation
// fails instead of truncating.
type NegativeExponentError struct {
	Base     int64
	Exponent int64
}

func (e *NegativeExponentError) Error() string {
	return fmt.Sprintf("function ^ expects a non-negative exponent, got %d", e.Exponent)
}

// StepLimitError reports that a reduction chain exceeded the
// host-configured MaxReduceSteps bound.
type StepLimitError struct {
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("reduction did not settle within %d steps", e.Limit)
}

// PrintError writes a highlighted error line to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "\033[1;31m"+msg+"\033[0m")
}

// ErrorKind returns a stable lowercase tag for an evaluation error.
// The network endpoint reports it next to the message.
func ErrorKind(err error) string {
	switch err.(type) {
	case *ParseError:
		return "parse"
	case *UnboundNameError:
		return "unbound-name"
	case *NotCallableError:
		return "not-callable"
	case *ArityError:
		return "arity"
	case *TypeMismatchError:
		return "type-mismatch"
	case *NegativeExponentError:
		return "negative-exponent"
	case *StepLimitError:
		return "step-limit"
	}
	return "internal"
}
