// Package weavetest provides testing utilities for weave: compiled grammar
// handles, specifier builders, and assertion helpers over layer snapshots.
package weavetest

import (
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Go returns the Go grammar.
func Go() *tree_sitter.Language {
	return tree_sitter.NewLanguage(unsafe.Pointer(ts_go.Language()))
}

// JSON returns the JSON grammar.
func JSON() *tree_sitter.Language {
	return tree_sitter.NewLanguage(unsafe.Pointer(ts_json.Language()))
}

// Python returns the Python grammar.
func Python() *tree_sitter.Language {
	return tree_sitter.NewLanguage(unsafe.Pointer(ts_python.Language()))
}

// YAML returns the YAML grammar.
func YAML() *tree_sitter.Language {
	return tree_sitter.NewLanguage(unsafe.Pointer(ts_yaml.Language()))
}

// Grammars returns all bundled test grammars keyed by name.
func Grammars() map[string]*tree_sitter.Language {
	return map[string]*tree_sitter.Language{
		"go":     Go(),
		"json":   JSON(),
		"python": Python(),
		"yaml":   YAML(),
	}
}
