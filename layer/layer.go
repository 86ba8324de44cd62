// Package layer implements the hierarchical, incremental, multi-language
// parse-tree manager. A Layer owns zero or more syntax trees for one
// language and discovers nested languages by running an injection query
// against its own freshly parsed trees; discovered regions become child
// layers, recursively.
//
// Layers are value-semantics snapshots: Parse never mutates its receiver and
// always returns a new Layer. The only mutating operation is ApplyEdit,
// which updates position bookkeeping on every tree at every depth so that
// the next Parse can reuse trees incrementally.
package layer

import (
	"log/slog"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/weave-syntax/weave/language"
)

// ReadCallback supplies document bytes to a parse. It must return the bytes
// at the given offset (any non-empty prefix of the remainder is fine) or nil
// at end of input. It is called repeatedly, in ascending order, and may be
// called again from the start within one Parse call or across calls; it must
// be idempotent and perform no side effects.
type ReadCallback func(offset int, position tree_sitter.Point) []byte

// NameResolver maps a raw language name captured by an injection query to
// the name a grammar is registered under (e.g. "js" to "javascript").
// Resolution heuristics are pluggable; the default lowercases the name.
type NameResolver func(name string) string

func defaultResolver(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Layer is the parse state for one position in the injection hierarchy: one
// base language, its trees, its region list, and its discovered children.
// A Layer exclusively owns its trees and recursively owns its children;
// there are no back-references and no shared mutable state between layers.
type Layer struct {
	spec     *language.Specifier
	grammar  *tree_sitter.Language
	table    map[string]language.Injection
	provider language.Provider

	// ranges is the ordered byte-range set this layer parses. Empty means
	// the whole document.
	ranges   []tree_sitter.Range
	combined bool

	// trees holds this layer's parse trees. When combined is set or there
	// is at most one range there is at most one tree; otherwise trees
	// correspond positionally to ranges.
	trees []*tree_sitter.Tree

	children map[string]*Layer

	resolver NameResolver
	logger   *slog.Logger
}

// Option configures layer construction.
type Option func(*Layer)

// WithLogger sets the logger used for degraded-path warnings. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ly *Layer) { ly.logger = l }
}

// WithNameResolver sets the injection language name resolver.
func WithNameResolver(fn NameResolver) Option {
	return func(ly *Layer) { ly.resolver = fn }
}

// New constructs an unparsed root layer for the given base language. The
// injected-language table is shared, unmodified, by every layer of the
// hierarchy. Grammar acquisition for the base language happens here; if it
// fails the error wraps language.ErrGrammarUnavailable and there is no valid
// layer.
func New(spec *language.Specifier, table map[string]language.Injection, provider language.Provider, opts ...Option) (*Layer, error) {
	grammar, err := provider.Grammar(spec.Name())
	if err != nil {
		return nil, err
	}

	l := &Layer{
		spec:     spec,
		grammar:  grammar,
		table:    table,
		provider: provider,
		children: make(map[string]*Layer),
		resolver: defaultResolver,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Language returns the name of this layer's base language.
func (l *Layer) Language() string {
	return l.spec.Name()
}

// Trees returns this layer's parse trees in order.
func (l *Layer) Trees() []*tree_sitter.Tree {
	return l.trees
}

// Ranges returns the byte ranges this layer was asked to parse. An empty
// result means the whole document.
func (l *Layer) Ranges() []tree_sitter.Range {
	return l.ranges
}

// Combined reports whether this layer parses all of its ranges as one tree.
func (l *Layer) Combined() bool {
	return l.combined
}

// Child returns the sub-layer for the given language name, or nil.
func (l *Layer) Child(name string) *Layer {
	return l.children[name]
}

// ChildNames returns the names of the open sub-layers. Sibling sub-layers
// carry no contract about relative order.
func (l *Layer) ChildNames() []string {
	names := make([]string, 0, len(l.children))
	for name := range l.children {
		names = append(names, name)
	}
	return names
}

// ApplyEdit delivers an edit to every tree at every depth of the hierarchy,
// in pre-order. Every layer is visited; no language is skipped. This must
// happen before the next Parse so the engine has correct position
// bookkeeping for every tree it may be asked to reuse.
func (l *Layer) ApplyEdit(edit *tree_sitter.InputEdit) {
	if l == nil {
		return
	}
	for _, t := range l.trees {
		t.Edit(edit)
	}
	for _, child := range l.children {
		child.ApplyEdit(edit)
	}
}

// Clone returns an independently owned deep copy of the layer hierarchy.
// Trees are duplicated with the engine's structural-sharing clone, so a
// consumer holding an older snapshot never observes edits or parses applied
// to the original.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	c := &Layer{
		spec:     l.spec,
		grammar:  l.grammar,
		table:    l.table,
		provider: l.provider,
		ranges:   append([]tree_sitter.Range(nil), l.ranges...),
		combined: l.combined,
		children: make(map[string]*Layer, len(l.children)),
		resolver: l.resolver,
		logger:   l.logger,
	}
	for _, t := range l.trees {
		c.trees = append(c.trees, t.Clone())
	}
	for name, child := range l.children {
		c.children[name] = child.Clone()
	}
	return c
}

// Close releases every tree owned by this layer and its children. Snapshots
// produced by Parse or Clone own their trees independently and must each be
// closed.
func (l *Layer) Close() {
	if l == nil {
		return
	}
	for _, t := range l.trees {
		t.Close()
	}
	l.trees = nil
	for _, child := range l.children {
		child.Close()
	}
}

// NodeAt returns the smallest node of this layer's own trees enclosing the
// byte range, or nil. It searches only this layer; locating the deepest
// enclosing injected layer is composed from this primitive by callers.
func (l *Layer) NodeAt(startByte, endByte uint) *tree_sitter.Node {
	var best *tree_sitter.Node
	for _, t := range l.trees {
		root := t.RootNode()
		if root == nil || root.StartByte() > startByte || root.EndByte() < endByte {
			continue
		}
		node := root.DescendantForByteRange(startByte, endByte)
		if node == nil {
			continue
		}
		if best == nil || node.EndByte()-node.StartByte() < best.EndByte()-best.StartByte() {
			best = node
		}
	}
	return best
}
