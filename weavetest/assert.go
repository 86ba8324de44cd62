package weavetest

import (
	"sort"
	"strings"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/weave-syntax/weave/layer"
)

// AssertTreeCount asserts the number of trees owned by a layer.
func AssertTreeCount(t testing.TB, l *layer.Layer, count int) {
	t.Helper()
	if l == nil {
		t.Fatalf("layer is nil, expected %d trees", count)
	}
	if len(l.Trees()) != count {
		t.Errorf("layer %s has %d trees, want %d", l.Language(), len(l.Trees()), count)
	}
}

// AssertChildren asserts the exact set of sub-layer names.
func AssertChildren(t testing.TB, l *layer.Layer, names ...string) {
	t.Helper()
	got := l.ChildNames()
	sort.Strings(got)
	want := append([]string(nil), names...)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("layer %s children = %v, want %v", l.Language(), got, want)
	}
}

// AssertCoversRange asserts that some range in the set covers [start, end).
func AssertCoversRange(t testing.TB, ranges []tree_sitter.Range, start, end uint) {
	t.Helper()
	for _, r := range ranges {
		if r.StartByte <= start && r.EndByte >= end {
			return
		}
	}
	t.Errorf("no range in %v covers [%d, %d)", ranges, start, end)
}

// AssertNoRangeTouches asserts that no range in the set intersects
// [start, end).
func AssertNoRangeTouches(t testing.TB, ranges []tree_sitter.Range, start, end uint) {
	t.Helper()
	for _, r := range ranges {
		if r.StartByte < end && r.EndByte > start {
			t.Errorf("range [%d, %d) intersects [%d, %d)", r.StartByte, r.EndByte, start, end)
		}
	}
}

// Sexp renders the layer hierarchy as a deterministic s-expression string:
// each layer's trees in order, then children sorted by name. Two snapshots
// with identical structure render identically, regardless of which trees
// were reused incrementally.
func Sexp(l *layer.Layer) string {
	if l == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("(" + l.Language())
	for _, tr := range l.Trees() {
		if root := tr.RootNode(); root != nil {
			b.WriteString(" ")
			b.WriteString(root.ToSexp())
		}
	}
	names := l.ChildNames()
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(" ")
		b.WriteString(Sexp(l.Child(name)))
	}
	b.WriteString(")")
	return b.String()
}
