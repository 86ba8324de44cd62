// Package language defines language identities, their compiled query handles,
// and the registry used to resolve grammars by name and documents to base
// languages.
package language

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrGrammarUnavailable is returned when no grammar is registered for a
// language name. It is fatal when it occurs for a root layer's base language
// and recovered by silent omission when it occurs for a discovered injection.
var ErrGrammarUnavailable = errors.New("grammar unavailable")

// Specifier is an immutable language configuration value: a name plus
// optional compiled highlight and injection query handles. Specifiers are
// shared by reference across every layer that uses the language and are
// never mutated after creation. They are looked up by name, never compared
// by content.
type Specifier struct {
	name           string
	highlightQuery *tree_sitter.Query
	injectionQuery *tree_sitter.Query
}

// NewSpecifier compiles the given query sources against the grammar and
// returns the resulting specifier. Either query source may be empty, in
// which case the corresponding handle is nil. The grammar itself is not
// retained; it is acquired through a Provider at layer construction.
func NewSpecifier(name string, grammar *tree_sitter.Language, highlightSrc, injectionSrc string) (*Specifier, error) {
	s := &Specifier{name: name}

	if highlightSrc != "" {
		q, err := tree_sitter.NewQuery(grammar, highlightSrc)
		if err != nil {
			return nil, fmt.Errorf("compiling highlight query for %s: %w", name, err)
		}
		s.highlightQuery = q
	}
	if injectionSrc != "" {
		q, err := tree_sitter.NewQuery(grammar, injectionSrc)
		if err != nil {
			return nil, fmt.Errorf("compiling injection query for %s: %w", name, err)
		}
		s.injectionQuery = q
	}
	return s, nil
}

// Name returns the language name this specifier was registered under.
func (s *Specifier) Name() string {
	return s.name
}

// HighlightQuery returns the compiled highlight query, or nil.
func (s *Specifier) HighlightQuery() *tree_sitter.Query {
	return s.highlightQuery
}

// InjectionQuery returns the compiled injection query, or nil.
func (s *Specifier) InjectionQuery() *tree_sitter.Query {
	return s.injectionQuery
}

// Injection is one entry of an injected-language table: the specifier for a
// language that may appear embedded in another document, plus its combine
// flag. When Combined is set, all regions of this language discovered within
// one parent layer are parsed as a single tree spanning their union; some
// grammars require continuous context across what look like separate blocks.
type Injection struct {
	Spec     *Specifier
	Combined bool
}

// Provider acquires grammars by language name. Implementations must return
// an error wrapping ErrGrammarUnavailable when no grammar is registered.
type Provider interface {
	Grammar(name string) (*tree_sitter.Language, error)
}
