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

/*
 Environments
*/

type Vars map[string]Term

type Env struct {
	Vars  Vars
	Outer *Env
}

// FindRead returns the innermost environment of the chain that binds
// the name, or the outermost environment when nothing does.
func (e *Env) FindRead(name string) *Env {
	if _, ok := e.Vars[name]; ok {
		return e
	}
	if e.Outer == nil {
		return e
	}
	return e.Outer.FindRead(name)
}

// Lookup resolves a name through the environment chain. Inner bindings
// shadow outer ones.
func (e *Env) Lookup(name string) (Term, bool) {
	v, ok := e.FindRead(name).Vars[name]
	return v, ok
}

// ComputeSize approximates the memory held by the environment chain.
func (e *Env) ComputeSize() uint {
	size := goAllocOverhead + uint(16)
	for k, v := range e.Vars {
		size += align8(uint(len(k))) + v.ComputeSize()
	}
	if e.Outer != nil {
		size += e.Outer.ComputeSize()
	}
	return size
}

/*
 Reduction
*/

// MaxReduceSteps bounds the number of steps a single reduction chain
// may take before it fails with StepLimitError. 0 disables the bound.
// The engine itself never needs it; hosts set it to guard interactive
// or network sessions against non-terminating inputs.
var MaxReduceSteps int

// StepOnce performs exactly one reduction step on a term.
//
// Literals and builtins step to themselves. A name steps to whatever
// the environment binds it to, unevaluated: a name bound to a call
// steps to that call, not to its result. A call reduces its callee to
// a final term and invokes it on the raw argument list; the result may
// itself be reducible.
func StepOnce(t Term, en *Env) (Term, error) {
	switch t.kind {
	case KindInteger, KindString, KindBuiltin:
		return t, nil
	case KindName:
		v, ok := en.Lookup(t.text)
		if !ok {
			return Term{}, &UnboundNameError{Identifier: t.text}
		}
		return v, nil
	case KindCall:
		callee, err := Reduce(t.call.callee, en)
		if err != nil {
			return Term{}, err
		}
		return Invoke(callee, t.call.args, en)
	}
	return t, nil
}

// Reduce drives StepOnce to its fixed point: a step whose result is
// structurally equal to its input is final. Errors abort immediately
// and leave the environment as it was.
func Reduce(t Term, en *Env) (Term, error) {
	steps := 0
	for {
		next, err := StepOnce(t, en)
		if err != nil {
			return Term{}, err
		}
		countStep()
		if Equal(next, t) {
			return next, nil
		}
		traceStep(t, next)
		t = next
		steps++
		if MaxReduceSteps > 0 && steps >= MaxReduceSteps {
			return Term{}, &StepLimitError{Limit: MaxReduceSteps}
		}
	}
}

// Invoke calls a fully reduced callee on raw argument terms.
//
// The order is fixed: callable check, arity check (both before any
// argument is touched), then left-to-right full reduction of every
// argument, then kind checks against the declared contract, then the
// native call. The native result is returned verbatim; builtins may
// hand back unevaluated calls for the driver to continue on.
func Invoke(callee Term, args []Term, en *Env) (Term, error) {
	if !callee.IsBuiltin() {
		return Term{}, &NotCallableError{Callee: callee.String()}
	}
	def := callee.def
	if len(args) < def.MinParameter {
		return Term{}, &ArityError{Identifier: def.Name, Expected: def.MinParameter, Actual: len(args)}
	}
	if len(args) > def.MaxParameter {
		return Term{}, &ArityError{Identifier: def.Name, Expected: def.MaxParameter, Actual: len(args)}
	}
	reduced := make([]Term, len(args))
	for i, a := range args {
		v, err := Reduce(a, en)
		if err != nil {
			return Term{}, err
		}
		reduced[i] = v
	}
	// contract checks run only after every argument has settled
	for i, v := range reduced {
		required := def.paramType(i)
		if !typesMatch(v.kind.typeName(), required) {
			return Term{}, &TypeMismatchError{
				Identifier: def.Name,
				Position:   i + 1,
				Expected:   required,
				Actual:     v.kind.typeName(),
			}
		}
	}
	countCall()
	return def.Fn(en, reduced...)
}
