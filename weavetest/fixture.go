package weavetest

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/weave-syntax/weave/language"
)

// MustSpecifier compiles a specifier or fails the test.
func MustSpecifier(t testing.TB, name string, grammar *tree_sitter.Language, highlightSrc, injectionSrc string) *language.Specifier {
	t.Helper()
	spec, err := language.NewSpecifier(name, grammar, highlightSrc, injectionSrc)
	if err != nil {
		t.Fatalf("compiling specifier %s: %v", name, err)
	}
	return spec
}

// Registry builds a registry containing the given (specifier, grammar)
// pairs; pairs alternate spec, grammar, spec, grammar.
func Registry(t testing.TB, pairs ...any) *language.Registry {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatal("Registry requires spec/grammar pairs")
	}
	r := language.NewRegistry()
	for i := 0; i < len(pairs); i += 2 {
		spec, ok := pairs[i].(*language.Specifier)
		if !ok {
			t.Fatalf("pair %d: expected *language.Specifier", i)
		}
		grammar, ok := pairs[i+1].(*tree_sitter.Language)
		if !ok {
			t.Fatalf("pair %d: expected *tree_sitter.Language", i+1)
		}
		r.Register(spec, grammar)
	}
	return r
}
