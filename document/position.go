package document

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// PointAt converts a byte offset to a tree-sitter point (row, byte column).
// Offsets outside the text are clamped.
func PointAt(text string, offset int) tree_sitter.Point {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	var row uint
	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			row++
			lineStart = i + 1
		}
	}
	return tree_sitter.Point{Row: row, Column: uint(offset - lineStart)}
}

// OffsetAt converts a tree-sitter point back to a byte offset. Points past
// the end of a line or of the text are clamped.
func OffsetAt(text string, point tree_sitter.Point) int {
	offset := 0
	for r := uint(0); r < point.Row; r++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}
	end := offset + int(point.Column)
	if nl := strings.IndexByte(text[offset:], '\n'); nl >= 0 && offset+nl < end {
		end = offset + nl
	}
	if end > len(text) {
		end = len(text)
	}
	return end
}

// LineAt returns the text of the given zero-based line, without its
// trailing newline.
func LineAt(text string, line uint) string {
	offset := 0
	for i := uint(0); i < line; i++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return ""
		}
		offset += nl + 1
	}
	if nl := strings.IndexByte(text[offset:], '\n'); nl >= 0 {
		return text[offset : offset+nl]
	}
	return text[offset:]
}
