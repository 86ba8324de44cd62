package layer

import (
	"fmt"
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// NamedRange is one discovered injection: a target language name and the
// byte range its content occupies. NamedRanges are transient; they are
// consumed immediately to build or extend child layers.
type NamedRange struct {
	Language string
	Range    tree_sitter.Range
}

// Injections runs the layer's injection query over its current trees and
// returns the discovered (language, range) sequence, in tree order then
// capture order. within, if non-nil, restricts discovery to a byte range.
// Re-running on unchanged trees with an unchanged query yields the same
// sequence every time.
func (l *Layer) Injections(src []byte, within *tree_sitter.Range) []NamedRange {
	q := l.spec.InjectionQuery()
	if q == nil {
		return nil
	}
	return discover(l.trees, q, src, within, l.resolver, l.logger, l.spec.Name())
}

// discover executes the injection query against the root node of every tree
// in the set and concatenates the results. A failure against one tree is
// swallowed for that tree only; whatever succeeded elsewhere is still
// returned.
func discover(trees []*tree_sitter.Tree, query *tree_sitter.Query, src []byte, within *tree_sitter.Range, resolve NameResolver, logger *slog.Logger, lang string) []NamedRange {
	var out []NamedRange
	for _, t := range trees {
		out = append(out, injectionsFromTree(t, query, src, within, resolve, logger, lang)...)
	}
	return out
}

// injectionsFromTree resolves raw captures into (language, range) pairs.
// Two capture conventions are supported per match:
//   - an @injection.language capture names the language via its matched
//     text, and @injection.content captures supply the ranges;
//   - any other capture name is itself the language name and its node is
//     the range.
func injectionsFromTree(t *tree_sitter.Tree, query *tree_sitter.Query, src []byte, within *tree_sitter.Range, resolve NameResolver, logger *slog.Logger, lang string) (out []NamedRange) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("injection query failed", "language", lang, "error", fmt.Sprint(r))
		}
	}()

	root := t.RootNode()
	if root == nil {
		return nil
	}

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()
	if within != nil {
		cursor.SetByteRange(within.StartByte, within.EndByte)
	}

	names := query.CaptureNames()
	matches := cursor.Matches(query, root, src)
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var matchLang string
		var contents []tree_sitter.Range
		for _, cap := range match.Captures {
			name := ""
			if int(cap.Index) < len(names) {
				name = names[cap.Index]
			}
			switch name {
			case "injection.language":
				matchLang = nodeText(&cap.Node, src)
			case "injection.content":
				contents = append(contents, nodeRange(&cap.Node))
			case "":
				// unnamed capture, nothing to resolve
			default:
				out = append(out, NamedRange{Language: resolve(name), Range: nodeRange(&cap.Node)})
			}
		}
		if matchLang == "" {
			continue
		}
		for _, r := range contents {
			out = append(out, NamedRange{Language: resolve(matchLang), Range: r})
		}
	}
	return out
}

func nodeRange(n *tree_sitter.Node) tree_sitter.Range {
	return tree_sitter.Range{
		StartByte:  n.StartByte(),
		EndByte:    n.EndByte(),
		StartPoint: n.StartPosition(),
		EndPoint:   n.EndPosition(),
	}
}

func nodeText(n *tree_sitter.Node, src []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(start) >= len(src) || int(end) > len(src) {
		return ""
	}
	return string(src[start:end])
}
