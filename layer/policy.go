package layer

import (
	"sort"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// parsePlan decides, for one layer, whether to produce one combined tree or
// one tree per region, and which previous trees are eligible for incremental
// reuse.
type parsePlan struct {
	oneTree bool
	prev    []*tree_sitter.Tree
}

// newParsePlan applies the range parse policy. A single tree is produced
// when the layer is combined or has at most one range. Positional reuse of
// per-region trees requires the previous tree count to equal the current
// region count; any change in region count invalidates all reuse for the
// layer, which prevents stitching a tree to a now-wrong boundary. A forced
// reparse disables reuse entirely.
func newParsePlan(combined bool, ranges []tree_sitter.Range, prevTrees []*tree_sitter.Tree, force bool) parsePlan {
	plan := parsePlan{oneTree: combined || len(ranges) <= 1}
	if force {
		return plan
	}
	if plan.oneTree {
		if len(prevTrees) == 1 {
			plan.prev = prevTrees
		}
	} else if len(prevTrees) == len(ranges) {
		plan.prev = prevTrees
	}
	return plan
}

// previous returns the reusable tree for the given tree index, or nil.
func (p parsePlan) previous(i int) *tree_sitter.Tree {
	if i < len(p.prev) {
		return p.prev[i]
	}
	return nil
}

// mergeRanges sorts ranges by start byte and merges overlapping or adjacent
// ones, producing a set valid as an included-range restriction (ascending,
// non-overlapping).
func mergeRanges(ranges []tree_sitter.Range) []tree_sitter.Range {
	if len(ranges) <= 1 {
		return ranges
	}
	sorted := append([]tree_sitter.Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartByte < sorted[j].StartByte
	})

	merged := sorted[:1]
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.StartByte <= last.EndByte {
			if r.EndByte > last.EndByte {
				last.EndByte = r.EndByte
				last.EndPoint = r.EndPoint
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
