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
	"testing"
)

func mustReduce(t *testing.T, term Term, en *Env) Term {
	t.Helper()
	result, err := Reduce(term, en)
	if err != nil {
		t.Fatalf("reduce %s: %v", term.String(), err)
	}
	return result
}

func TestReduce_LiteralFinality(t *testing.T) {
	en := &Env{Vars: make(Vars)}
	for _, term := range []Term{NewInteger(0), NewInteger(-7), NewString(""), NewString("hello")} {
		result := mustReduce(t, term, en)
		if !Equal(result, term) {
			t.Fatalf("literal %s reduced to %s", term.String(), result.String())
		}
	}
}

func TestReduce_Idempotence(t *testing.T) {
	en := DefaultEnvironment()
	en.Vars["answer"] = NewInteger(42)
	terms := []Term{
		NewInteger(3),
		NewString("x"),
		NewName("answer"),
		NewCall(NewName("+"), NewInteger(2), NewInteger(5)),
		NewCall(NewName("x^2+y^2"), NewInteger(2), NewInteger(5)),
	}
	for _, term := range terms {
		once := mustReduce(t, term, en)
		twice := mustReduce(t, once, en)
		if !Equal(once, twice) {
			t.Fatalf("reduce not idempotent for %s: %s vs %s", term.String(), once.String(), twice.String())
		}
	}
}

func TestReduce_NameChainResolves(t *testing.T) {
	en := &Env{Vars: Vars{
		"answer":     NewInteger(42),
		"universe":   NewName("answer"),
		"everything": NewName("universe"),
	}}
	result := mustReduce(t, NewName("everything"), en)
	if !Equal(result, NewInteger(42)) {
		t.Fatalf("expected 42, got %s", result.String())
	}
}

func TestStepOnce_ReturnsBindingUnevaluated(t *testing.T) {
	en := DefaultEnvironment()
	bound := NewCall(NewName("+"), NewInteger(2), NewInteger(5))
	en.Vars["x"] = bound
	step, err := StepOnce(NewName("x"), en)
	if err != nil {
		t.Fatalf("step name: %v", err)
	}
	if !Equal(step, bound) {
		t.Fatalf("one step on a name must return the binding as-is, got %s", step.String())
	}
}

func TestReduce_Arithmetic(t *testing.T) {
	en := DefaultEnvironment()
	cases := []struct {
		op   string
		a, b int64
		want int64
	}{
		{"+", 2, 5, 7},
		{"-", 2, 5, -3},
		{"*", 2, 5, 10},
		{"^", 2, 5, 32},
		{"^", 2, 0, 1},
		{"^", 0, 0, 1},
		{"^", -2, 3, -8},
	}
	for _, c := range cases {
		result := mustReduce(t, NewCall(NewName(c.op), NewInteger(c.a), NewInteger(c.b)), en)
		if !result.IsInteger() || result.Int() != c.want {
			t.Fatalf("(%s %d %d): expected %d, got %s", c.op, c.a, c.b, c.want, result.String())
		}
	}
}

func TestReduce_NegativeExponentFails(t *testing.T) {
	en := DefaultEnvironment()
	_, err := Reduce(NewCall(NewName("^"), NewInteger(2), NewInteger(-1)), en)
	e, ok := err.(*NegativeExponentError)
	if !ok {
		t.Fatalf("expected NegativeExponentError, got %v", err)
	}
	if e.Base != 2 || e.Exponent != -1 {
		t.Fatalf("wrong payload: %+v", e)
	}
}

func TestReduce_CompositeExpandsThenReduces(t *testing.T) {
	en := DefaultEnvironment()
	call := NewCall(NewName("x^2+y^2"), NewInteger(2), NewInteger(5))

	// the first step returns the unevaluated expansion
	step, err := StepOnce(call, en)
	if err != nil {
		t.Fatalf("step composite: %v", err)
	}
	want := NewCall(NewName("+"),
		NewCall(NewName("^"), NewInteger(2), NewInteger(2)),
		NewCall(NewName("^"), NewInteger(5), NewInteger(2)))
	if !Equal(step, want) {
		t.Fatalf("expected expansion %s, got %s", want.String(), step.String())
	}

	// the driver keeps reducing the expansion to a number
	result := mustReduce(t, call, en)
	if !Equal(result, NewInteger(29)) {
		t.Fatalf("expected 29, got %s", result.String())
	}
}

func TestReduce_UnboundName(t *testing.T) {
	en := &Env{Vars: make(Vars)}
	_, err := Reduce(NewName("nope"), en)
	e, ok := err.(*UnboundNameError)
	if !ok {
		t.Fatalf("expected UnboundNameError, got %v", err)
	}
	if e.Identifier != "nope" {
		t.Fatalf("wrong identifier: %s", e.Identifier)
	}
}

func TestReduce_ArityMismatch(t *testing.T) {
	en := DefaultEnvironment()
	_, err := Reduce(NewCall(NewName("+"), NewInteger(1)), en)
	e, ok := err.(*ArityError)
	if !ok {
		t.Fatalf("expected ArityError, got %v", err)
	}
	if e.Identifier != "+" || e.Expected != 2 || e.Actual != 1 {
		t.Fatalf("wrong payload: %+v", e)
	}
}

func TestReduce_TypeMismatchPosition(t *testing.T) {
	en := DefaultEnvironment()
	_, err := Reduce(NewCall(NewName("+"), NewInteger(1), NewString("x")), en)
	e, ok := err.(*TypeMismatchError)
	if !ok {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if e.Identifier != "+" || e.Position != 2 || e.Expected != "int" || e.Actual != "string" {
		t.Fatalf("wrong payload: %+v", e)
	}
}

func TestReduce_NotCallable(t *testing.T) {
	en := DefaultEnvironment()
	en.Vars["five"] = NewInteger(5)
	for _, callee := range []Term{NewInteger(5), NewString("+"), NewName("five")} {
		_, err := Reduce(NewCall(callee, NewInteger(1)), en)
		if _, ok := err.(*NotCallableError); !ok {
			t.Fatalf("callee %s: expected NotCallableError, got %v", callee.String(), err)
		}
	}
}

func TestReduce_CalleeFailsBeforeArguments(t *testing.T) {
	en := DefaultEnvironment()
	// the argument would fail too; the callee error must win
	_, err := Reduce(NewCall(NewName("nope"), NewName("alsonope")), en)
	e, ok := err.(*UnboundNameError)
	if !ok {
		t.Fatalf("expected UnboundNameError, got %v", err)
	}
	if e.Identifier != "nope" {
		t.Fatalf("callee must fail first, got error for %s", e.Identifier)
	}
}

func TestReduce_ArityBeforeArguments(t *testing.T) {
	en := DefaultEnvironment()
	// one argument that would fail to reduce; arity is checked first
	_, err := Reduce(NewCall(NewName("+"), NewName("nope")), en)
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("expected ArityError before argument evaluation, got %v", err)
	}
}

func TestReduce_AllArgumentsReduceBeforeKindChecks(t *testing.T) {
	en := DefaultEnvironment()
	// argument 1 settles to a string, argument 2 cannot settle at all;
	// the reduction failure wins over the kind mismatch
	_, err := Reduce(NewCall(NewName("+"), NewString("x"), NewName("nope")), en)
	if _, ok := err.(*UnboundNameError); !ok {
		t.Fatalf("expected UnboundNameError, got %v", err)
	}
}

func TestInvoke_ArgumentsLeftToRight(t *testing.T) {
	r := NewRegistry()
	en := &Env{Vars: make(Vars)}
	var seen []int64
	r.Declare(en, &Declaration{
		"probe", "records its argument",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"v", "int", "value"},
		}, "int",
		func(en *Env, a ...Term) (Term, error) {
			seen = append(seen, a[0].Int())
			return a[0], nil
		},
	})
	r.Declare(en, &Declaration{
		"pair", "consumes two values",
		2, 2,
		[]DeclarationParameter{
			DeclarationParameter{"a", "int", "first"},
			DeclarationParameter{"b", "int", "second"},
		}, "int",
		func(en *Env, a ...Term) (Term, error) {
			return NewInteger(a[0].Int()*100 + a[1].Int()), nil
		},
	})
	call := NewCall(NewName("pair"),
		NewCall(NewName("probe"), NewInteger(1)),
		NewCall(NewName("probe"), NewInteger(2)))
	result := mustReduce(t, call, en)
	if result.Int() != 102 {
		t.Fatalf("expected 102, got %s", result.String())
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("arguments not reduced left to right: %v", seen)
	}
}

func TestReduce_StepLimit(t *testing.T) {
	r := NewRegistry()
	en := &Env{Vars: make(Vars)}
	r.Declare(en, &Declaration{
		"loop", "expands into a fresh call forever",
		1, 1,
		[]DeclarationParameter{
			DeclarationParameter{"n", "int", "counter"},
		}, "call",
		func(en *Env, a ...Term) (Term, error) {
			return NewCall(NewName("loop"), NewInteger(a[0].Int()+1)), nil
		},
	})
	old := MaxReduceSteps
	MaxReduceSteps = 50
	defer func() { MaxReduceSteps = old }()

	_, err := Reduce(NewCall(NewName("loop"), NewInteger(0)), en)
	e, ok := err.(*StepLimitError)
	if !ok {
		t.Fatalf("expected StepLimitError, got %v", err)
	}
	if e.Limit != 50 {
		t.Fatalf("wrong limit: %d", e.Limit)
	}
}

func TestReadStats_CountersAdvance(t *testing.T) {
	before := ReadStats()
	en := DefaultEnvironment()
	mustReduce(t, NewCall(NewName("+"), NewInteger(1), NewInteger(2)), en)
	after := ReadStats()
	if after.Steps <= before.Steps {
		t.Fatalf("step counter did not advance: %d -> %d", before.Steps, after.Steps)
	}
	if after.Calls <= before.Calls {
		t.Fatalf("call counter did not advance: %d -> %d", before.Calls, after.Calls)
	}
}
