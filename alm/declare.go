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

import "os"
import "fmt"
import "strings"
import "path/filepath"

import "github.com/launix-de/NonLockingReadMap"

// Declaration describes one builtin: its identifier, its arity and
// parameter contract, and the native function that implements it.
type Declaration struct {
	Name         string
	Desc         string
	MinParameter int
	MaxParameter int
	Params       []DeclarationParameter
	Returns      string // any | int | string | name | call | func
	Fn           func(en *Env, a ...Term) (Term, error)
}

type DeclarationParameter struct {
	Name string
	Type string // any | int | string | name | call | func
	Desc string
}

func (d Declaration) GetKey() string {
	return d.Name
}

func (d Declaration) ComputeSize() uint {
	size := goAllocOverhead + uint(104)
	size += align8(uint(len(d.Name))) + align8(uint(len(d.Desc))) + align8(uint(len(d.Returns)))
	for _, p := range d.Params {
		size += uint(48) + align8(uint(len(p.Name))) + align8(uint(len(p.Type))) + align8(uint(len(p.Desc)))
	}
	return size
}

// Registry holds the declared builtins of one engine instance. It is
// populated by an explicit setup function before any evaluation and is
// read-only afterwards, which is why the declarations live in a
// NonLockingReadMap: concurrent sessions resolve builtins without
// taking a lock.
type Registry struct {
	decls  NonLockingReadMap.NonLockingReadMap[Declaration, string]
	titles []string // "#Chapter" entries interleaved with builtin names, in declaration order
	base   Vars     // bindings copied into fresh environments
}

func NewRegistry() *Registry {
	return &Registry{
		decls: NonLockingReadMap.New[Declaration, string](),
		base:  make(Vars),
	}
}

// DeclareTitle starts a new chapter in help and documentation output.
func (r *Registry) DeclareTitle(title string) {
	r.titles = append(r.titles, "#"+title)
}

// Declare registers a builtin and, when en is non-nil, binds its name
// in that environment. Declaring the same name twice replaces the
// earlier entry; environments seeded before the replacement keep the
// old binding.
func (r *Registry) Declare(en *Env, def *Declaration) {
	r.titles = append(r.titles, def.Name)
	r.decls.Set(def)
	if en != nil && def.Fn != nil {
		en.Vars[def.Name] = NewBuiltin(def)
	}
}

// Lookup returns the declaration for an identifier, or nil.
func (r *Registry) Lookup(name string) *Declaration {
	return r.decls.Get(name)
}

// Declarations returns all registered declarations sorted by name.
func (r *Registry) Declarations() []*Declaration {
	return r.decls.GetAll()
}

// Environment returns a fresh environment seeded with the registry's
// core bindings. The copy is the caller's own: extending it does not
// affect the registry or any other environment.
func (r *Registry) Environment() *Env {
	vars := make(Vars, len(r.base))
	for k, v := range r.base {
		vars[k] = v
	}
	return &Env{Vars: vars}
}

// DeclarationFor resolves a callable term or a name to its
// declaration, or nil.
func (r *Registry) DeclarationFor(v Term) *Declaration {
	switch v.Kind() {
	case KindBuiltin:
		return v.Builtin()
	case KindName, KindString:
		return r.Lookup(v.Text())
	}
	return nil
}

// paramType returns the declared type of the i-th argument. The last
// parameter repeats for variadic builtins.
func (d *Declaration) paramType(i int) string {
	if len(d.Params) == 0 {
		return "any"
	}
	if i >= len(d.Params) {
		i = len(d.Params) - 1
	}
	return d.Params[i].Type
}

// typesMatch checks a value kind against a declared parameter type.
// Both sides may be |-separated unions; "any" matches everything.
func typesMatch(given string, required string) bool {
	if given == "any" || required == "any" {
		return true
	}
	for _, req := range strings.Split(required, "|") {
		for _, g := range strings.Split(given, "|") {
			if req == g {
				return true
			}
		}
	}
	return false
}

// Help prints a function list (name == "") or the full contract of a
// single builtin to stdout.
func (r *Registry) Help(name string) {
	if name == "" {
		fmt.Println("Available functions:")
		for _, title := range r.titles {
			if title[0] == '#' {
				fmt.Println("")
				fmt.Println("-- " + title[1:] + " --")
			} else if def := r.Lookup(title); def != nil {
				fmt.Println("  " + title + ": " + strings.Split(def.Desc, "\n")[0])
			}
		}
		fmt.Println("")
		fmt.Println("type (help \"functionname\") to get more info")
		return
	}
	def := r.Lookup(name)
	if def == nil {
		fmt.Println("function not found: " + name)
		return
	}
	fmt.Println("Help for: " + def.Name)
	fmt.Println("===")
	fmt.Println("")
	fmt.Println(def.Desc)
	fmt.Println("")
	fmt.Println("Allowed number of parameters: ", def.MinParameter, "-", def.MaxParameter)
	fmt.Println("")
	for _, p := range def.Params {
		fmt.Println(" - " + p.Name + " (" + p.Type + "): " + p.Desc)
	}
	fmt.Println("")
}

// slugify makes a filesystem-safe, lowercase slug from a chapter title.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		out = "chapter"
	}
	return out
}

// WriteDocumentation generates a Markdown reference under folder:
// index.md linking one chapter file per DeclareTitle, each chapter
// listing its builtins with contract and description.
func (r *Registry) WriteDocumentation(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", folder, err)
	}

	type chapter struct {
		Title string
		Slug  string
		Fns   []*Declaration
	}

	var chapters []*chapter
	var current *chapter
	usedSlugs := map[string]int{}

	uniqSlug := func(s string) string {
		base := slugify(s)
		if usedSlugs[base] == 0 {
			usedSlugs[base] = 1
			return base
		}
		for i := 2; ; i++ {
			candidate := fmt.Sprintf("%s-%d", base, i)
			if usedSlugs[candidate] == 0 {
				usedSlugs[candidate] = 1
				return candidate
			}
		}
	}

	for _, t := range r.titles {
		if len(t) > 0 && t[0] == '#' {
			title := strings.TrimSpace(t[1:])
			ch := &chapter{Title: title, Slug: uniqSlug(title)}
			chapters = append(chapters, ch)
			current = ch
			continue
		}
		def := r.Lookup(t)
		if def == nil {
			continue
		}
		if current == nil {
			current = &chapter{Title: "General", Slug: uniqSlug("General")}
			chapters = append(chapters, current)
		}
		current.Fns = append(current.Fns, def)
	}

	indexPath := filepath.Join(folder, "index.md")
	indexFile, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", indexPath, err)
	}
	defer indexFile.Close()

	fmt.Fprintf(indexFile, "# Documentation\n\n")
	for _, ch := range chapters {
		if len(ch.Fns) == 0 {
			continue
		}
		fmt.Fprintf(indexFile, "- [%s](%s.md)\n", ch.Title, ch.Slug)
	}

	for _, ch := range chapters {
		if len(ch.Fns) == 0 {
			continue
		}
		fp := filepath.Join(folder, ch.Slug+".md")
		f, err := os.Create(fp)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", fp, err)
		}

		fmt.Fprintf(f, "# %s\n\n", ch.Title)
		for _, def := range ch.Fns {
			fmt.Fprintf(f, "## %s\n\n", def.Name)
			if def.Desc != "" {
				fmt.Fprintf(f, "%s\n\n", def.Desc)
			}
			fmt.Fprintf(f, "**Allowed number of parameters:** %d-%d\n\n", def.MinParameter, def.MaxParameter)

			fmt.Fprintf(f, "### Parameters\n\n")
			if len(def.Params) == 0 {
				fmt.Fprintf(f, "_This function has no parameters._\n\n")
			} else {
				for _, p := range def.Params {
					fmt.Fprintf(f, "- **%s** (`%s`): %s\n", p.Name, p.Type, p.Desc)
				}
				fmt.Fprintln(f)
			}

			fmt.Fprintf(f, "### Returns\n\n`%s`\n\n", def.Returns)
		}

		_ = f.Close()
	}

	return nil
}
