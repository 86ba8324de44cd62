package layer_test

import (
	"fmt"
	"strings"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/weave-syntax/weave/document"
	"github.com/weave-syntax/weave/layer"
	"github.com/weave-syntax/weave/weavetest"
)

// ---------------------------------------------------------------------------
// Hosts
// ---------------------------------------------------------------------------

// plainHost builds a root layer with no injected languages.
func plainHost(tb testing.TB, name string, grammar *tree_sitter.Language) *layer.Layer {
	tb.Helper()
	spec := weavetest.MustSpecifier(tb, name, grammar, "", "")
	registry := weavetest.Registry(tb, spec, grammar)
	root, err := layer.New(spec, nil, registry)
	if err != nil {
		tb.Fatalf("constructing %s layer: %v", name, err)
	}
	return root
}

type benchLang struct {
	name    string
	gen     func(lines int) string // generates a file with ~N lines
	edit    func(lines int) (marker, text string)
	newRoot func(tb testing.TB) *layer.Layer
}

// ---------------------------------------------------------------------------
// Realistic source generators
// ---------------------------------------------------------------------------

func pyFuncs(lines int) int {
	funcs := (lines - 2) / 4
	if funcs < 1 {
		return 1
	}
	return funcs
}

// genPythonSource embeds a JSON document in every function, so the python
// host carries one injection site per function.
func genPythonSource(lines int) string {
	var b strings.Builder
	b.WriteString("import json\n\n")
	for i := 0; i < pyFuncs(lines); i++ {
		fmt.Fprintf(&b, "def load_%d():\n", i)
		fmt.Fprintf(&b, "    raw = \"\"\"{\"id\": %d, \"tags\": [\"a\", \"b\"]}\"\"\"\n", i)
		fmt.Fprintf(&b, "    return json.loads(raw)\n\n")
	}
	return b.String()
}

func editPython(lines int) (string, string) {
	return fmt.Sprintf("\"id\": %d", pyFuncs(lines)/2), "\"rev\": 0, "
}

func goFuncs(lines int) int {
	funcs := (lines - 4) / 5
	if funcs < 1 {
		return 1
	}
	return funcs
}

func genGoSource(lines int) string {
	var b strings.Builder
	b.WriteString("package bench\n\nimport \"strings\"\n\n")
	for i := 0; i < goFuncs(lines); i++ {
		fmt.Fprintf(&b, "func Process%d(input string) string {\n", i)
		fmt.Fprintf(&b, "\tresult := strings.TrimSpace(input)\n")
		fmt.Fprintf(&b, "\treturn result\n}\n\n")
	}
	return b.String()
}

func editGo(lines int) (string, string) {
	return fmt.Sprintf("func Process%d", goFuncs(lines)/2),
		"func Extra(input string) string { return input }\n\n"
}

func genJSONSource(lines int) string {
	var b strings.Builder
	b.WriteString("{\n")
	entries := lines - 2
	if entries < 1 {
		entries = 1
	}
	for i := 0; i < entries; i++ {
		comma := ","
		if i == entries-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "  \"key_%d\": \"value_%d\"%s\n", i, i, comma)
	}
	b.WriteString("}\n")
	return b.String()
}

func editJSON(lines int) (string, string) {
	return fmt.Sprintf("\"key_%d\"", (lines-2)/2), "\"extra\": true, "
}

func yamlEntries(lines int) int {
	entries := (lines - 1) / 5
	if entries < 1 {
		return 1
	}
	return entries
}

func genYAMLSource(lines int) string {
	var b strings.Builder
	b.WriteString("---\n")
	for i := 0; i < yamlEntries(lines); i++ {
		fmt.Fprintf(&b, "service_%d:\n", i)
		fmt.Fprintf(&b, "  name: service-%d\n", i)
		fmt.Fprintf(&b, "  version: \"%d.0.0\"\n", i)
		fmt.Fprintf(&b, "  enabled: true\n")
	}
	return b.String()
}

func editYAML(lines int) (string, string) {
	return fmt.Sprintf("  name: service-%d\n", yamlEntries(lines)/2), "  replicas: 3\n"
}

var benchLangs = []benchLang{
	{
		name: "Python", gen: genPythonSource, edit: editPython,
		newRoot: func(tb testing.TB) *layer.Layer { return pythonHost(tb, jsonInStrings, false) },
	},
	{
		name: "Go", gen: genGoSource, edit: editGo,
		newRoot: func(tb testing.TB) *layer.Layer { return plainHost(tb, "go", weavetest.Go()) },
	},
	{
		name: "JSON", gen: genJSONSource, edit: editJSON,
		newRoot: func(tb testing.TB) *layer.Layer { return plainHost(tb, "json", weavetest.JSON()) },
	},
	{
		name: "YAML", gen: genYAMLSource, edit: editYAML,
		newRoot: func(tb testing.TB) *layer.Layer { return plainHost(tb, "yaml", weavetest.YAML()) },
	},
}

var benchSizes = []struct {
	name  string
	lines int
}{
	{"Small_50", 50},
	{"Medium_500", 500},
	{"Large_5000", 5000},
}

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

// BenchmarkInitialParse measures a forced full parse of the whole hierarchy,
// injection discovery included.
func BenchmarkInitialParse(b *testing.B) {
	for _, lang := range benchLangs {
		for _, sz := range benchSizes {
			src := lang.gen(sz.lines)
			b.Run(fmt.Sprintf("%s/%s", lang.name, sz.name), func(b *testing.B) {
				root := lang.newRoot(b)
				b.Cleanup(root.Close)

				b.ReportAllocs()
				b.SetBytes(int64(len(src)))
				for i := 0; i < b.N; i++ {
					snap := root.Parse(reader(src), true)
					if len(snap.Trees()) == 0 {
						b.Fatal("no tree produced")
					}
					snap.Close()
				}
			})
		}
	}
}

// BenchmarkIncrementalEdit measures edit propagation plus incremental
// reparse. Each iteration applies a structural edit mid-file and then
// reverts it, keeping the source stable across iterations.
func BenchmarkIncrementalEdit(b *testing.B) {
	for _, lang := range benchLangs {
		for _, sz := range benchSizes {
			src := lang.gen(sz.lines)
			marker, text := lang.edit(sz.lines)
			off := strings.Index(src, marker)
			if off < 0 {
				b.Fatalf("%s/%s: edit marker not found", lang.name, sz.name)
			}

			b.Run(fmt.Sprintf("%s/%s", lang.name, sz.name), func(b *testing.B) {
				root := lang.newRoot(b)
				b.Cleanup(root.Close)
				current := root.Parse(reader(src), true)
				b.Cleanup(func() { current.Close() })

				insert := document.Change{StartByte: off, EndByte: off, Text: text}
				remove := document.Change{StartByte: off, EndByte: off + len(text), Text: ""}

				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					edited, insEdits := document.ApplyChanges(src, []document.Change{insert})
					for j := range insEdits {
						current.ApplyEdit(&insEdits[j])
					}
					next := current.Parse(reader(edited), false)
					current.Close()
					current = next

					_, revEdits := document.ApplyChanges(edited, []document.Change{remove})
					for j := range revEdits {
						current.ApplyEdit(&revEdits[j])
					}
					next = current.Parse(reader(src), false)
					current.Close()
					current = next
				}
			})
		}
	}
}

// BenchmarkInjectionDiscovery measures running the injection query over the
// whole host tree versus restricted to the edited region.
func BenchmarkInjectionDiscovery(b *testing.B) {
	for _, sz := range benchSizes {
		src := genPythonSource(sz.lines)
		marker, _ := editPython(sz.lines)
		off := uint(strings.Index(src, marker))
		scope := &tree_sitter.Range{StartByte: off, EndByte: off + 40}

		root := pythonHost(b, jsonInStrings, false)
		b.Cleanup(root.Close)
		snap := root.Parse(reader(src), true)
		b.Cleanup(snap.Close)

		b.Run(fmt.Sprintf("%s/Full", sz.name), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				snap.Injections([]byte(src), nil)
			}
		})
		b.Run(fmt.Sprintf("%s/Scoped", sz.name), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				snap.Injections([]byte(src), scope)
			}
		})
	}
}

// BenchmarkChangedRanges measures the hierarchy-wide diff between two
// snapshots one edit apart.
func BenchmarkChangedRanges(b *testing.B) {
	for _, sz := range benchSizes {
		src := genPythonSource(sz.lines)
		marker, text := editPython(sz.lines)
		off := strings.Index(src, marker)

		root := pythonHost(b, jsonInStrings, false)
		b.Cleanup(root.Close)
		prev := root.Parse(reader(src), true)
		b.Cleanup(prev.Close)

		edited, edits := document.ApplyChanges(src, []document.Change{
			{StartByte: off, EndByte: off, Text: text},
		})
		withEdit := prev.Clone()
		b.Cleanup(withEdit.Close)
		for j := range edits {
			withEdit.ApplyEdit(&edits[j])
		}
		next := withEdit.Parse(reader(edited), false)
		b.Cleanup(next.Close)

		b.Run(sz.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if ranges := next.ChangedRanges(withEdit); len(ranges) == 0 {
					b.Fatal("expected at least one changed range")
				}
			}
		})
	}
}
