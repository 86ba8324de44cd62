package layer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Capture is a single query capture resolved against the document bytes.
type Capture struct {
	Name string
	Node *tree_sitter.Node
	Text string
}

// HighlightCaptures runs this layer's highlight query against all of its
// trees and returns the captures in tree order then capture order. Returns
// nil when the layer has no highlight query.
func (l *Layer) HighlightCaptures(src []byte) []Capture {
	return l.highlightCaptures(src, nil)
}

// HighlightCapturesInRanges restricts the highlight query to the given byte
// ranges. Each range is queried independently and the results concatenated;
// pass the output of ChangedRanges to re-scan only invalidated regions.
func (l *Layer) HighlightCapturesInRanges(src []byte, ranges []tree_sitter.Range) []Capture {
	if len(ranges) == 0 {
		return nil
	}
	var captures []Capture
	for _, r := range ranges {
		captures = append(captures, l.highlightCaptures(src, &r)...)
	}
	return captures
}

func (l *Layer) highlightCaptures(src []byte, within *tree_sitter.Range) []Capture {
	query := l.spec.HighlightQuery()
	if query == nil {
		return nil
	}

	names := query.CaptureNames()
	var captures []Capture
	for _, t := range l.trees {
		root := t.RootNode()
		if root == nil {
			continue
		}

		cursor := tree_sitter.NewQueryCursor()
		if within != nil {
			cursor.SetByteRange(within.StartByte, within.EndByte)
		}
		matches := cursor.Matches(query, root, src)
		for {
			match := matches.Next()
			if match == nil {
				break
			}
			for _, cap := range match.Captures {
				name := ""
				if int(cap.Index) < len(names) {
					name = names[cap.Index]
				}
				captures = append(captures, Capture{
					Name: name,
					Node: &cap.Node,
					Text: nodeText(&cap.Node, src),
				})
			}
		}
		cursor.Close()
	}
	return captures
}
