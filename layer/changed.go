package layer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ChangedRanges diffs this snapshot against a previous snapshot of the same
// layer identity and returns the byte ranges a consumer must treat as
// potentially changed, for example for re-highlighting. prev may be nil,
// in which case everything this hierarchy covers is reported.
//
// For each layer's own grammar the engine's structural tree-diff of the
// primary tree is authoritative. Every sub-layer additionally contributes
// its entire current region list rather than a computed diff; fine-grained
// diffing only exists at the outermost tree of each layer, so this
// over-approximates but never under-invalidates. The result is unordered;
// callers merge and sort overlapping ranges themselves.
func (l *Layer) ChangedRanges(prev *Layer) []tree_sitter.Range {
	var out []tree_sitter.Range
	l.appendChangedRanges(prev, &out)
	return out
}

func (l *Layer) appendChangedRanges(prev *Layer, out *[]tree_sitter.Range) {
	cur := l.primaryTree()
	var old *tree_sitter.Tree
	if prev != nil {
		old = prev.primaryTree()
	}

	switch {
	case cur == nil:
		// This layer contributes nothing.
	case old == nil:
		// Everything is new: the whole byte extent of the new tree.
		root := cur.RootNode()
		if root != nil {
			*out = append(*out, nodeRange(root))
		}
	default:
		*out = append(*out, old.ChangedRanges(cur)...)
	}

	for name, child := range l.children {
		*out = append(*out, child.ranges...)
		var prevChild *Layer
		if prev != nil {
			prevChild = prev.children[name]
		}
		child.appendChangedRanges(prevChild, out)
	}
}

func (l *Layer) primaryTree() *tree_sitter.Tree {
	if len(l.trees) == 0 {
		return nil
	}
	return l.trees[0]
}
