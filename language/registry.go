package language

import (
	"fmt"
	"path"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Matcher associates a language name with one or more file-matching
// strategies. At least one of Extensions, Filenames, or Pattern must be set.
type Matcher struct {
	Language   string
	Extensions []string // e.g., [".yml", ".yaml"]
	Filenames  []string // exact filenames, e.g., ["Dockerfile", "Makefile"]
	Pattern    string   // glob pattern, e.g., ".github/workflows/*.yml"
}

// Registry maps language names to grammars and specifiers, and document
// paths to base languages. It implements Provider for layer construction.
type Registry struct {
	mu       sync.RWMutex
	grammars map[string]*tree_sitter.Language
	specs    map[string]*Specifier
	matchers []Matcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		grammars: make(map[string]*tree_sitter.Language),
		specs:    make(map[string]*Specifier),
	}
}

// Register adds a language: its specifier and the grammar handle it parses
// with. Registering the same name again replaces the previous entry.
func (r *Registry) Register(spec *Specifier, grammar *tree_sitter.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grammars[spec.Name()] = grammar
	r.specs[spec.Name()] = spec
}

// RegisterMatcher adds a file matcher. Matchers are evaluated in
// registration order; the first match wins.
func (r *Registry) RegisterMatcher(m Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, m)
}

// Grammar returns the grammar registered under the given name, or an error
// wrapping ErrGrammarUnavailable.
func (r *Registry) Grammar(name string) (*tree_sitter.Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.grammars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGrammarUnavailable, name)
	}
	return lang, nil
}

// Specifier returns the specifier registered under the given name.
func (r *Registry) Specifier(name string) (*Specifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[name]
	return s, ok
}

// SpecifierForPath resolves a document path to the specifier of its base
// language. Matchers are evaluated in this order:
//  1. exact filename match
//  2. glob pattern match (against the full path, then the filename)
//  3. extension match
func (r *Registry) SpecifierForPath(p string) (*Specifier, error) {
	filename := path.Base(p)
	ext := path.Ext(p)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matchers {
		for _, fn := range m.Filenames {
			if fn == filename {
				return r.specByName(m.Language)
			}
		}
	}

	for _, m := range r.matchers {
		if m.Pattern == "" {
			continue
		}
		if matched, _ := path.Match(m.Pattern, p); matched {
			return r.specByName(m.Language)
		}
		if matched, _ := path.Match(m.Pattern, filename); matched {
			return r.specByName(m.Language)
		}
	}

	if ext != "" {
		for _, m := range r.matchers {
			for _, mExt := range m.Extensions {
				if !strings.HasPrefix(mExt, ".") {
					mExt = "." + mExt
				}
				if mExt == ext {
					return r.specByName(m.Language)
				}
			}
		}
	}

	return nil, fmt.Errorf("no language registered for: %s", p)
}

// specByName must be called with the lock held.
func (r *Registry) specByName(name string) (*Specifier, error) {
	s, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGrammarUnavailable, name)
	}
	return s, nil
}
