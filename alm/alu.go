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

import "sync"

// NewBuiltinRegistry builds the registry of language builtins. The
// setup is explicit and ordered; nothing registers itself at import
// time, and the returned registry is ready for concurrent readers.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	en := &Env{Vars: make(Vars)}

	r.DeclareTitle("Arithmetic")
	r.Declare(en, &Declaration{
		"+", "adds two integers",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"a", "int", "left operand"},
			DeclarationParameter{"b", "int", "right operand"},
		}, "int",
		func(en *Env, a ...Term) (Term, error) {
			return NewInteger(a[0].Int() + a[1].Int()), nil
		},
	})
	r.Declare(en, &Declaration{
		"-", "subtracts the second integer from the first",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"a", "int", "left operand"},
			DeclarationParameter{"b", "int", "right operand"},
		}, "int",
		func(en *Env, a ...Term) (Term, error) {
			return NewInteger(a[0].Int() - a[1].Int()), nil
		},
	})
	r.Declare(en, &Declaration{
		"*", "multiplies two integers",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"a", "int", "left operand"},
			DeclarationParameter{"b", "int", "right operand"},
		}, "int",
		func(en *Env, a ...Term) (Term, error) {
			return NewInteger(a[0].Int() * a[1].Int()), nil
		},
	})
	r.Declare(en, &Declaration{
		"^", "raises the first integer to the power of the second; the exponent must not be negative, the result wraps in 64 bits",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"base", "int", "base"},
			DeclarationParameter{"exponent", "int", "non-negative exponent"},
		}, "int",
		func(en *Env, a ...Term) (Term, error) {
			if a[1].Int() < 0 {
				return Term{}, &NegativeExponentError{Base: a[0].Int(), Exponent: a[1].Int()}
			}
			return NewInteger(ipow(a[0].Int(), a[1].Int())), nil
		},
	})

	r.DeclareTitle("Composite")
	r.Declare(en, &Declaration{
		"x^2+y^2", "sum of squares; returns the unevaluated call (+ (^ x 2) (^ y 2)) so the expansion reduces in the open",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"x", "any", "first operand"},
			DeclarationParameter{"y", "any", "second operand"},
		}, "call",
		func(en *Env, a ...Term) (Term, error) {
			return NewCall(NewName("+"),
				NewCall(NewName("^"), a[0], NewInteger(2)),
				NewCall(NewName("^"), a[1], NewInteger(2))), nil
		},
	})

	r.base = en.Vars
	return r
}

// ipow computes base^exp for exp >= 0; 0^0 is 1. Overflow wraps.
func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

var defaultRegistry *Registry
var defaultRegistryOnce sync.Once

// DefaultRegistry returns the process-wide builtin registry, built on
// first use and read-only afterwards.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewBuiltinRegistry()
	})
	return defaultRegistry
}

// DefaultEnvironment returns a fresh environment seeded with the
// default registry's builtins. Every session gets its own copy.
func DefaultEnvironment() *Env {
	return DefaultRegistry().Environment()
}
