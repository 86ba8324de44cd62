// Package weave maintains hierarchical, incremental, multi-language syntax
// trees for documents that mix languages, such as markup with embedded code
// blocks. Each document gets a tree of layers: a layer owns the trees for
// one language and discovers nested languages by running an injection query
// over them, recursively.
//
// The layer package holds the core parse/edit/diff machinery, language
// holds specifiers and the grammar registry, document provides the managed
// text buffers, and config loads hot-reloadable language tables from TOML.
// Manager in this package ties them together:
//
//	store := document.NewStore()
//	mgr := weave.NewManager(registry, table, store)
//	mgr.OnUpdate(func(path string, snap *layer.Layer, changed []tree_sitter.Range) {
//		// re-render the changed byte ranges
//	})
//	store.Open("doc.md", 1, text)
package weave
