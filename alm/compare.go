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

// Equal reports structural equality: same kind and recursively equal
// payloads. Two terms built independently from the same source text
// are equal for Equal, never only for pointer identity. Equality is
// also the fixed-point test of the reduction driver.
func Equal(a, b Term) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInteger:
		return a.num == b.num
	case KindString, KindName:
		return a.text == b.text
	case KindCall:
		if !Equal(a.call.callee, b.call.callee) {
			return false
		}
		if len(a.call.args) != len(b.call.args) {
			return false
		}
		for i := range a.call.args {
			if !Equal(a.call.args[i], b.call.args[i]) {
				return false
			}
		}
		return true
	case KindBuiltin:
		// builtins are equal when they denote the same registered
		// operation; pointer identity covers re-seeded environments
		// because registry declarations are allocated once
		if a.def == b.def {
			return true
		}
		return a.def != nil && b.def != nil && a.def.Name == b.def.Name
	}
	return false
}
