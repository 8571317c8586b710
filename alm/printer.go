/*
Copyright (C) 2025-2026  Carl-Philip Hänsch
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
	"bytes"
	"strconv"
	"strings"
)

// String returns the textual rendering of the term: integers in base
// 10, strings quoted with escapes, names and builtins as their
// identifier, calls as (callee arg1 arg2 ...).
func (t Term) String() string {
	var b bytes.Buffer
	Serialize(&b, t)
	return b.String()
}

var stringEscaper = strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\r", "\\r", "\n", "\\n", "\t", "\\t")

// Serialize writes the rendering of a term into a buffer. The output
// parses back into an equal term, except for builtins, which render as
// their identifier and parse back into the name bound to them.
func Serialize(b *bytes.Buffer, t Term) {
	switch t.kind {
	case KindInteger:
		b.WriteString(strconv.FormatInt(t.num, 10))
	case KindString:
		b.WriteByte('"')
		b.WriteString(stringEscaper.Replace(t.text))
		b.WriteByte('"')
	case KindName:
		b.WriteString(t.text)
	case KindCall:
		b.WriteByte('(')
		Serialize(b, t.call.callee)
		for _, a := range t.call.args {
			b.WriteByte(' ')
			Serialize(b, a)
		}
		b.WriteByte(')')
	case KindBuiltin:
		if t.def != nil {
			b.WriteString(t.def.Name)
		} else {
			b.WriteString("[native func]")
		}
	}
}
