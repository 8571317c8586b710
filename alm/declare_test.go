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
	"path/filepath"
	"strings"
	"testing"
)

func constDecl(name string, value int64) *Declaration {
	return &Declaration{
		name, "returns " + name,
		0, 0,
		[]DeclarationParameter{}, "int",
		func(en *Env, a ...Term) (Term, error) {
			return NewInteger(value), nil
		},
	}
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	en1 := &Env{Vars: make(Vars)}
	r.Declare(en1, constDecl("f", 1))
	en2 := &Env{Vars: make(Vars)}
	r.Declare(en2, constDecl("f", 2))

	if def := r.Lookup("f"); def == nil {
		t.Fatalf("lookup after redeclare failed")
	} else if v, err := def.Fn(nil); err != nil || v.Int() != 2 {
		t.Fatalf("registry must hold the last declaration, got %s (%v)", v.String(), err)
	}
	// an environment seeded before the redeclare keeps its old binding
	old, _ := en1.Lookup("f")
	if v, err := old.Builtin().Fn(nil); err != nil || v.Int() != 1 {
		t.Fatalf("earlier environment lost its binding, got %s (%v)", v.String(), err)
	}
}

func TestRegistry_EnvironmentCopiesAreIndependent(t *testing.T) {
	r := NewBuiltinRegistry()
	a := r.Environment()
	b := r.Environment()
	a.Vars["mine"] = NewInteger(1)
	if _, ok := b.Lookup("mine"); ok {
		t.Fatalf("bindings must not leak between seeded environments")
	}
	c := r.Environment()
	if _, ok := c.Lookup("mine"); ok {
		t.Fatalf("bindings must not leak back into the registry")
	}
	if _, ok := b.Lookup("+"); !ok {
		t.Fatalf("seeded environment misses core builtins")
	}
}

func TestRegistry_DeclarationsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		r.Declare(nil, constDecl(name, 0))
	}
	defs := r.Declarations()
	if len(defs) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(defs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if defs[i].Name != want {
			t.Fatalf("declarations not sorted: position %d is %s", i, defs[i].Name)
		}
	}
}

func TestRegistry_DeclarationFor(t *testing.T) {
	r := NewBuiltinRegistry()
	en := r.Environment()
	plus, _ := en.Lookup("+")
	if def := r.DeclarationFor(plus); def == nil || def.Name != "+" {
		t.Fatalf("builtin term did not resolve to its declaration")
	}
	if def := r.DeclarationFor(NewName("^")); def == nil || def.Name != "^" {
		t.Fatalf("name did not resolve to its declaration")
	}
	if def := r.DeclarationFor(NewInteger(5)); def != nil {
		t.Fatalf("integer must not resolve to a declaration")
	}
}

func TestTypesMatch(t *testing.T) {
	cases := []struct {
		given, required string
		want            bool
	}{
		{"int", "int", true},
		{"int", "string", false},
		{"string", "any", true},
		{"any", "int", true},
		{"int", "string|int", true},
		{"call", "string|int", false},
		{"func", "func", true},
	}
	for _, c := range cases {
		if got := typesMatch(c.given, c.required); got != c.want {
			t.Fatalf("typesMatch(%q, %q) = %v, want %v", c.given, c.required, got, c.want)
		}
	}
}

func TestWriteDocumentation(t *testing.T) {
	dir := t.TempDir()
	r := NewBuiltinRegistry()
	if err := r.WriteDocumentation(dir); err != nil {
		t.Fatalf("write documentation: %v", err)
	}
	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), "arithmetic.md") {
		t.Fatalf("index misses the arithmetic chapter: %s", index)
	}
	chapter, err := os.ReadFile(filepath.Join(dir, "arithmetic.md"))
	if err != nil {
		t.Fatalf("read chapter: %v", err)
	}
	for _, fn := range []string{"## +", "## ^"} {
		if !strings.Contains(string(chapter), fn) {
			t.Fatalf("chapter misses %q", fn)
		}
	}
}
