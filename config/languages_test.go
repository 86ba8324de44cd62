package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/weave-syntax/weave/config"
	"github.com/weave-syntax/weave/language"
	"github.com/weave-syntax/weave/weavetest"
)

const languagesTOML = `
[languages.python]
extensions = [".py"]
highlight-query = "queries/python/highlights.scm"
injection-query = "queries/python/injections.scm"

[languages.json]
extensions = [".json"]
aliases = ["json5", "jsonc"]
combined = false

[languages.yaml]
extensions = [".yml", ".yaml"]
combined = true
`

// writeTable lays out a config dir with the language table and its query
// files, and returns the table path.
func writeTable(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	queryDir := filepath.Join(dir, "queries", "python")
	if err := os.MkdirAll(queryDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(queryDir, "highlights.scm"): "(identifier) @variable",
		filepath.Join(queryDir, "injections.scm"): "(string (string_content) @json)",
		filepath.Join(dir, "languages.toml"):      languagesTOML,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "languages.toml")
}

func TestLoadLanguages(t *testing.T) {
	path := writeTable(t)

	built, err := config.LoadLanguages(path, weavetest.Grammars())
	if err != nil {
		t.Fatalf("LoadLanguages: %v", err)
	}

	spec, err := built.Registry.SpecifierForPath("app.py")
	if err != nil {
		t.Fatalf("SpecifierForPath: %v", err)
	}
	if spec.Name() != "python" {
		t.Errorf("base language = %s, want python", spec.Name())
	}
	if spec.HighlightQuery() == nil || spec.InjectionQuery() == nil {
		t.Error("expected query files to be compiled into the python specifier")
	}

	entry, ok := built.Table["yaml"]
	if !ok {
		t.Fatal("yaml missing from injected-language table")
	}
	if !entry.Combined {
		t.Error("yaml should carry combined=true")
	}
	if j := built.Table["json"]; j.Combined {
		t.Error("json should carry combined=false")
	}

	if got := built.Resolver("JSON5"); got != "json" {
		t.Errorf("Resolver(JSON5) = %s, want json", got)
	}
	if got := built.Resolver("yaml"); got != "yaml" {
		t.Errorf("Resolver(yaml) = %s, want yaml", got)
	}

	if len(built.QueryPaths) != 2 {
		t.Errorf("QueryPaths = %v, want the two python query files", built.QueryPaths)
	}
}

func TestLoadLanguages_MissingGrammar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "languages.toml")
	table := "[languages.fortran]\nextensions = ['.f90']\n"
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := config.LoadLanguages(path, weavetest.Grammars())
	if !errors.Is(err, language.ErrGrammarUnavailable) {
		t.Errorf("err = %v, want ErrGrammarUnavailable", err)
	}
}

func TestLoadLanguages_MissingQueryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "languages.toml")
	table := "[languages.python]\ninjection-query = 'nope.scm'\n"
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.LoadLanguages(path, weavetest.Grammars()); err == nil {
		t.Error("expected an error for a missing query file")
	}
}

func TestLanguages_ValidateAliases(t *testing.T) {
	shadowing := &config.Languages{Languages: map[string]config.Language{
		"json": {Aliases: []string{"yaml"}},
		"yaml": {},
	}}
	if err := shadowing.Validate(); err == nil {
		t.Error("expected alias shadowing a configured language to be rejected")
	}

	collision := &config.Languages{Languages: map[string]config.Language{
		"json": {Aliases: []string{"j"}},
		"yaml": {Aliases: []string{"j"}},
	}}
	if err := collision.Validate(); err == nil {
		t.Error("expected the same alias on two languages to be rejected")
	}

	ok := &config.Languages{Languages: map[string]config.Language{
		"json": {Aliases: []string{"json5", "jsonc"}},
	}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadTOML_MissingFileYieldsDefaults(t *testing.T) {
	defaults := &config.Languages{Languages: map[string]config.Language{
		"python": {Extensions: []string{".py"}},
	}}
	cfg, err := config.LoadTOML[config.Languages](filepath.Join(t.TempDir(), "absent.toml"), defaults)
	if err != nil {
		t.Fatalf("LoadTOML: %v", err)
	}
	if _, ok := cfg.Languages["python"]; !ok {
		t.Error("expected defaults back for a missing file")
	}
}

func TestLoadTOML_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.toml")
	table := "[languages.json]\naliases = ['yaml']\n[languages.yaml]\n"
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadTOML[config.Languages](path, nil); err == nil {
		t.Error("expected validation failure to reject the load")
	}
}

func TestStore_SwapNotifies(t *testing.T) {
	store := config.NewStore(&config.Languages{})

	var calls int
	store.OnChange(func(old, updated *config.Languages) {
		calls++
		if old == nil || updated == nil {
			t.Error("listener received nil values")
		}
	})

	fresh := &config.Languages{}
	if prev := store.Swap(fresh); prev == nil {
		t.Error("Swap should return the previous value")
	}
	if store.Get() != fresh {
		t.Error("Get should return the swapped-in value")
	}
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
}
