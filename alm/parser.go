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
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	packrat "github.com/launix-de/go-packrat"
)

/*
 Grammar:

   program := expr* $
   expr    := integer | string | call | name
   call    := "(" expr+ ")"

 Integers are tried before names, so -3 is a literal and - is a name.
 Strings use JSON syntax. A name is any other token free of
 whitespace, parens and quotes: +, ^, x^2+y^2, answer.
*/

// rule tags the node of one grammar production so the tree walk can
// dispatch on it.
type rule struct {
	name string
	sub  packrat.Parser
}

func (r *rule) Match(s *packrat.Scanner) *packrat.Node {
	m := r.sub.Match(s)
	if m == nil {
		return nil
	}
	return &packrat.Node{m.Matched, m.Start, r, []*packrat.Node{m}}
}

// proxy allows the self recursion expr -> call -> expr.
type proxy struct {
	p packrat.Parser
}

func (x *proxy) Match(s *packrat.Scanner) *packrat.Node {
	return x.p.Match(s)
}

type grammar struct {
	integer *rule
	str     *rule
	name    *rule
	call    *rule
	program packrat.Parser
}

func newGrammar() *grammar {
	g := new(grammar)
	expr := new(proxy)
	g.integer = &rule{"integer", packrat.NewRegexParser(`[+-]?[0-9]+`, false, true)}
	g.str = &rule{"string", packrat.NewRegexParser(`"(?:[^"\\]|\\.)*"`, false, true)}
	g.name = &rule{"name", packrat.NewRegexParser(`[^\s()"0-9][^\s()"]*`, false, true)}
	g.call = &rule{"call", packrat.NewAndParser(
		packrat.NewAtomParser("(", false, true),
		packrat.NewManyParser(expr, packrat.NewEmptyParser()),
		packrat.NewAtomParser(")", false, true),
	)}
	expr.p = packrat.NewOrParser(g.integer, g.str, g.call, g.name)
	g.program = packrat.NewAndParser(
		packrat.NewKleeneParser(expr, packrat.NewEmptyParser()),
		packrat.NewEndParser(true),
	)
	return g
}

var theGrammar *grammar
var grammarOnce sync.Once

// language returns the shared grammar. Parsers are stateless matchers;
// per-parse state lives in the scanner, so concurrent sessions may
// share them.
func language() *grammar {
	grammarOnce.Do(func() {
		theGrammar = newGrammar()
	})
	return theGrammar
}

// buildTerm turns one expr parse node into a term.
func (g *grammar) buildTerm(source string, n *packrat.Node) (Term, error) {
	switch p := n.Parser.(type) {
	case *rule:
		switch p {
		case g.integer:
			i, err := strconv.ParseInt(strings.TrimSpace(n.Matched), 10, 64)
			if err != nil {
				return Term{}, &ParseError{Source: source, Msg: "invalid integer literal " + n.Matched}
			}
			return NewInteger(i), nil
		case g.str:
			var s string
			if err := json.Unmarshal([]byte(strings.TrimSpace(n.Matched)), &s); err != nil {
				return Term{}, &ParseError{Source: source, Msg: "invalid string literal " + n.Matched}
			}
			return NewString(s), nil
		case g.name:
			return NewName(strings.TrimSpace(n.Matched)), nil
		case g.call:
			and := n.Children[0]
			inner := and.Children[1] // the expr+ between the parens
			items := make([]Term, 0, len(inner.Children)/2+1)
			for i := 0; i < len(inner.Children); i += 2 {
				t, err := g.buildTerm(source, inner.Children[i])
				if err != nil {
					return Term{}, err
				}
				items = append(items, t)
			}
			return NewCall(items[0], items[1:]...), nil
		}
	case *packrat.OrParser:
		return g.buildTerm(source, n.Children[0])
	}
	return Term{}, &ParseError{Source: source, Msg: "unexpected node " + n.Matched}
}

// ReadAll parses source text into the ordered list of its top-level
// terms. source labels the origin for error messages ("repl", a file
// name); s is the text itself.
func ReadAll(source string, s string) ([]Term, error) {
	g := language()
	scanner := packrat.NewScanner(s, packrat.SkipWhitespaceAndCommentsRegex)
	node, err := packrat.Parse(g.program, scanner)
	if err != nil {
		return nil, &ParseError{Source: source, Msg: err.Error()}
	}
	kleene := node.Children[0]
	terms := make([]Term, 0, len(kleene.Children)/2+1)
	for i := 0; i < len(kleene.Children); i += 2 {
		t, err := g.buildTerm(source, kleene.Children[i])
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// EvalAll parses source text and reduces every top-level expression in
// order against en, returning the result of the last one. The zero
// term is returned for empty input.
func EvalAll(source string, s string, en *Env) (Term, error) {
	terms, err := ReadAll(source, s)
	if err != nil {
		return Term{}, err
	}
	var result Term
	for _, t := range terms {
		countExpression()
		if Trace != nil {
			tt := t
			Trace.Duration(tt.String(), "eval", func() {
				result, err = Reduce(tt, en)
			})
		} else {
			result, err = Reduce(t, en)
		}
		if err != nil {
			return Term{}, err
		}
	}
	return result, nil
}
