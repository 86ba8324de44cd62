package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/weave-syntax/weave/language"
	"github.com/weave-syntax/weave/layer"
)

// Languages is the TOML schema of a language table:
//
//	[languages.python]
//	extensions = [".py"]
//	injection-query = "queries/python/injections.scm"
//
//	[languages.json]
//	extensions = [".json"]
//	aliases = ["json5"]
//	combined = false
type Languages struct {
	Languages map[string]Language `toml:"languages"`
}

// Language configures one language of the table. Query fields are paths to
// .scm files, resolved relative to the config file.
type Language struct {
	Extensions     []string `toml:"extensions"`
	Filenames      []string `toml:"filenames"`
	Pattern        string   `toml:"pattern"`
	HighlightQuery string   `toml:"highlight-query"`
	InjectionQuery string   `toml:"injection-query"`
	Combined       bool     `toml:"combined"`
	Aliases        []string `toml:"aliases"`
}

// Validate rejects tables with alias collisions or aliases shadowing a
// configured language name.
func (c *Languages) Validate() error {
	seen := make(map[string]string)
	for name, lang := range c.Languages {
		for _, alias := range lang.Aliases {
			if _, ok := c.Languages[alias]; ok {
				return fmt.Errorf("alias %q of language %q shadows a configured language", alias, name)
			}
			if prev, ok := seen[alias]; ok && prev != name {
				return fmt.Errorf("alias %q claimed by both %q and %q", alias, prev, name)
			}
			seen[alias] = name
		}
	}
	return nil
}

// Built is the runtime form of a language table: a registry that resolves
// grammars and documents, the injected-language table shared by all layers,
// and the alias-aware name resolver.
type Built struct {
	Registry *language.Registry
	Table    map[string]language.Injection
	Resolver layer.NameResolver

	// QueryPaths are the absolute paths of every query file the table
	// references, for change watching.
	QueryPaths []string
}

// Build compiles the configured table against the given grammars. Every
// configured language must have a grammar; a missing one is a configuration
// error wrapping language.ErrGrammarUnavailable. baseDir anchors relative
// query paths.
func (c *Languages) Build(grammars map[string]*tree_sitter.Language, baseDir string) (*Built, error) {
	b := &Built{
		Registry: language.NewRegistry(),
		Table:    make(map[string]language.Injection, len(c.Languages)),
	}

	aliases := make(map[string]string)
	for name, cfg := range c.Languages {
		grammar, ok := grammars[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (configured but not compiled in)", language.ErrGrammarUnavailable, name)
		}

		highlightSrc, path, err := readQuery(baseDir, cfg.HighlightQuery)
		if err != nil {
			return nil, err
		}
		if path != "" {
			b.QueryPaths = append(b.QueryPaths, path)
		}
		injectionSrc, path, err := readQuery(baseDir, cfg.InjectionQuery)
		if err != nil {
			return nil, err
		}
		if path != "" {
			b.QueryPaths = append(b.QueryPaths, path)
		}

		spec, err := language.NewSpecifier(name, grammar, highlightSrc, injectionSrc)
		if err != nil {
			return nil, err
		}

		b.Registry.Register(spec, grammar)
		if len(cfg.Extensions) > 0 || len(cfg.Filenames) > 0 || cfg.Pattern != "" {
			b.Registry.RegisterMatcher(language.Matcher{
				Language:   name,
				Extensions: cfg.Extensions,
				Filenames:  cfg.Filenames,
				Pattern:    cfg.Pattern,
			})
		}
		b.Table[name] = language.Injection{Spec: spec, Combined: cfg.Combined}

		for _, alias := range cfg.Aliases {
			aliases[strings.ToLower(alias)] = name
		}
	}

	b.Resolver = func(name string) string {
		name = strings.ToLower(strings.TrimSpace(name))
		if target, ok := aliases[name]; ok {
			return target
		}
		return name
	}
	return b, nil
}

func readQuery(baseDir, path string) (src, abs string, err error) {
	if path == "" {
		return "", "", nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading query %s: %w", path, err)
	}
	return string(data), path, nil
}

// LoadLanguages loads and builds the language table at path. Relative query
// paths resolve against the config file's directory.
func LoadLanguages(path string, grammars map[string]*tree_sitter.Language) (*Built, error) {
	cfg, err := LoadTOML[Languages](path, &Languages{})
	if err != nil {
		return nil, err
	}
	return cfg.Build(grammars, filepath.Dir(path))
}

// WatchLanguages loads the table at path and keeps it fresh: whenever the
// config file or any referenced query file changes, the table is rebuilt and
// swapped into the returned store. A rebuild failure keeps the previous
// table and logs the error.
func WatchLanguages(path string, grammars map[string]*tree_sitter.Language, opts ...WatcherOption) (*Store[Built], *Watcher, error) {
	built, err := LoadLanguages(path, grammars)
	if err != nil {
		return nil, nil, err
	}
	store := NewStore(built)

	reload := func() {
		fresh, err := LoadLanguages(path, grammars)
		if err != nil {
			slog.Warn("language table reload failed, keeping previous", "path", path, "error", err)
			return
		}
		store.Swap(fresh)
	}

	watcher, err := NewWatcher(append([]string{path}, built.QueryPaths...), reload, opts...)
	if err != nil {
		return nil, nil, err
	}
	return store, watcher, nil
}
