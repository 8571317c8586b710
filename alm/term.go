/*
Copyright (C) 2025-2026  Carl-Philip Hänsch

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

// TermKind discriminates the closed set of term variants.
// There are exactly five kinds; every switch over TermKind in this
// package is exhaustive.
type TermKind uint8

const (
	KindInteger TermKind = iota
	KindString
	KindName
	KindCall
	KindBuiltin
)

// typeName maps a kind to the type vocabulary used in declarations
// and error messages (see DeclarationParameter.Type).
func (k TermKind) typeName() string {
	switch k {
	case KindInteger:
		return "int"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindCall:
		return "call"
	case KindBuiltin:
		return "func"
	}
	return "invalid"
}

// Term is the one value type of the language. The kind tag decides which
// payload field is meaningful. Terms are immutable once constructed, so
// subterms may be shared freely between terms and between goroutines.
//
// The zero value is the integer 0.
type Term struct {
	kind TermKind
	num  int64     // KindInteger
	text string    // KindString, KindName
	call *callData // KindCall
	def  *Declaration
}

// callData holds the payload of a call term. args is never modified
// after construction.
type callData struct {
	callee Term
	args   []Term
}

const (
	termStructOverhead = uint(48)
	goAllocOverhead    = uint(16)
)

//
// Constructors
//

func NewInteger(i int64) Term { return Term{kind: KindInteger, num: i} }

func NewString(s string) Term { return Term{kind: KindString, text: s} }

func NewName(ident string) Term { return Term{kind: KindName, text: ident} }

// NewCall builds a call term from a callee and its arguments. The
// argument slice is copied so later changes to the caller's slice do
// not leak into the term.
func NewCall(callee Term, args ...Term) Term {
	copied := make([]Term, len(args))
	copy(copied, args)
	return Term{kind: KindCall, call: &callData{callee: callee, args: copied}}
}

// NewBuiltin wraps a registry declaration as a callable term.
func NewBuiltin(def *Declaration) Term { return Term{kind: KindBuiltin, def: def} }

//
// Predicates
//

func (t Term) Kind() TermKind  { return t.kind }
func (t Term) IsInteger() bool { return t.kind == KindInteger }
func (t Term) IsString() bool  { return t.kind == KindString }
func (t Term) IsName() bool    { return t.kind == KindName }
func (t Term) IsCall() bool    { return t.kind == KindCall }
func (t Term) IsBuiltin() bool { return t.kind == KindBuiltin }

//
// Accessors. Calling an accessor for the wrong kind yields the zero
// value of the payload, never a panic.
//

// Int returns the integer payload.
func (t Term) Int() int64 {
	if t.kind == KindInteger {
		return t.num
	}
	return 0
}

// Text returns the string payload of a string literal or the
// identifier of a name.
func (t Term) Text() string {
	if t.kind == KindString || t.kind == KindName {
		return t.text
	}
	return ""
}

// Callee returns the callee of a call term.
func (t Term) Callee() Term {
	if t.kind == KindCall {
		return t.call.callee
	}
	return Term{}
}

// Args returns the argument list of a call term. The returned slice is
// the term's own storage and must not be modified.
func (t Term) Args() []Term {
	if t.kind == KindCall {
		return t.call.args
	}
	return nil
}

// NumArgs returns the number of arguments of a call term.
func (t Term) NumArgs() int {
	if t.kind == KindCall {
		return len(t.call.args)
	}
	return 0
}

// Builtin returns the declaration behind a builtin term.
func (t Term) Builtin() *Declaration {
	if t.kind == KindBuiltin {
		return t.def
	}
	return nil
}

// ComputeSize approximates the total memory consumption of the term
// including heap allocations it references. Shared subterms are
// counted once per reference.
func (t Term) ComputeSize() uint {
	size := termStructOverhead
	switch t.kind {
	case KindInteger:
		// payload is inline
	case KindString, KindName:
		size += align8(uint(len(t.text)))
	case KindCall:
		size += goAllocOverhead + t.call.callee.ComputeSize()
		size += goAllocOverhead // args backing array
		for _, a := range t.call.args {
			size += a.ComputeSize()
		}
	case KindBuiltin:
		// the declaration belongs to the registry, not to the term
	}
	return size
}

func align8(n uint) uint {
	if n == 0 {
		return 0
	}
	if r := n & 7; r != 0 {
		return n + (8 - r)
	}
	return n
}
