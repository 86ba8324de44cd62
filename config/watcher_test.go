package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/weave-syntax/weave/config"
	"github.com/weave-syntax/weave/weavetest"
)

// eventually polls cond for up to two seconds.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWatchLanguages_ReloadsOnWrite(t *testing.T) {
	path := writeTable(t)

	store, watcher, err := config.WatchLanguages(path, weavetest.Grammars(),
		config.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("WatchLanguages: %v", err)
	}
	defer watcher.Close()

	if _, ok := store.Get().Table["go"]; ok {
		t.Fatal("go should not be configured yet")
	}

	updated := languagesTOML + "\n[languages.go]\nextensions = [\".go\"]\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		_, ok := store.Get().Table["go"]
		return ok
	}, "expected the table to pick up the new language")
}

func TestWatchLanguages_KeepsPreviousOnBadReload(t *testing.T) {
	path := writeTable(t)

	store, watcher, err := config.WatchLanguages(path, weavetest.Grammars(),
		config.WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("WatchLanguages: %v", err)
	}
	defer watcher.Close()

	before := store.Get()

	// An unconfigured grammar makes the rebuild fail; the store must keep
	// serving the last good table.
	if err := os.WriteFile(path, []byte("[languages.fortran]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if store.Get() != before {
		t.Error("a failed reload must not replace the current table")
	}
}
